package check

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/types"
)

// inferBlock infers the type of a block, which is its tail expression's
// type if present, else unit. Entering a block that carries a Region
// binding pushes that region onto the live-region set for the duration of
// the block.
func (c *Checker) inferBlock(b *ast.Block) (*ast.Type, error) {
	if b.Region != 0 {
		c.liveRegions[b.Region] = true
		defer delete(c.liveRegions, b.Region)
	}

	for _, stmt := range b.Stmts {
		if err := c.checkStmt(stmt); err != nil {
			return nil, err
		}
	}

	if b.Tail == nil {
		return ast.NewPrimitive(ast.PrimUnit, ast.StrategyStack), nil
	}

	return c.inferExpr(b.Tail)
}

func (c *Checker) checkStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		initType, err := c.inferExpr(s.Init)
		if err != nil {
			return err
		}
		declType := s.DeclType
		if declType == nil {
			declType = c.unifier.Fresh()
		}
		if err := c.unifier.Unify(declType, initType); err != nil {
			c.reportUnify(s.Span, err)
			return err
		}
		if sym := c.scopes.Symbol(s.Symbol); sym != nil {
			sym.DeclaredType = declType
		}
		s.DeclType = declType
		return nil

	case *ast.ExprStmt:
		_, err := c.inferExpr(s.X)
		return err

	case *ast.ReturnStmt:
		if s.Value != nil {
			_, err := c.inferExpr(s.Value)
			return err
		}
		return nil

	case *ast.AssignStmt:
		targetType, err := c.inferExpr(s.Target)
		if err != nil {
			return err
		}
		valueType, err := c.inferExpr(s.Value)
		if err != nil {
			return err
		}
		if err := c.unifier.Unify(targetType, valueType); err != nil {
			c.reportUnify(s.Span, err)
			return err
		}
		return nil

	case *ast.ForStmt:
		if sym := c.scopes.Symbol(s.Symbol); sym != nil {
			sym.DeclaredType = ast.NewPrimitive(ast.PrimI64, ast.StrategyStack)
		}
		_, err := c.inferBlock(s.Body)
		return err

	case *ast.RegionStmt:
		_, err := c.inferBlock(s.Body)
		return err

	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil
	}
	return nil
}

// inferExpr generates constraints for e and returns its (possibly still
// partially-variable) type, recording the mapping in c.types.
func (c *Checker) inferExpr(e ast.Expr) (*ast.Type, error) {
	t, err := c.inferExprInner(e)
	if err != nil {
		return nil, err
	}
	c.types[e] = t
	return t, nil
}

func (c *Checker) inferExprInner(e ast.Expr) (*ast.Type, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		prim := x.Prim
		if prim == 0 {
			prim = ast.PrimI32
		}
		return ast.NewPrimitive(prim, ast.StrategyStack), nil

	case *ast.FloatLit:
		return ast.NewPrimitive(ast.PrimF64, ast.StrategyStack), nil

	case *ast.BoolLit:
		return ast.NewPrimitive(ast.PrimBool, ast.StrategyStack), nil

	case *ast.Ident:
		sym := c.scopes.Symbol(x.Symbol)
		if sym == nil || sym.DeclaredType == nil {
			return c.unifier.Fresh(), nil
		}
		return sym.DeclaredType, nil

	case *ast.BinaryExpr:
		return c.inferBinary(x)

	case *ast.UnaryExpr:
		operand, err := c.inferExpr(x.Operand)
		if err != nil {
			return nil, err
		}
		if x.Op == ast.OpDeref {
			resolved := c.unifier.Resolve(operand)
			if resolved.Kind == ast.TypeReference || resolved.Kind == ast.TypePointer {
				return resolved.Target, nil
			}
		}
		return operand, nil

	case *ast.RefExpr:
		target, err := c.inferExpr(x.Target)
		if err != nil {
			return nil, err
		}
		ownKind := ast.OwnershipBorrowedShared
		if x.Mutable {
			ownKind = ast.OwnershipBorrowedExclusive
		}
		return &ast.Type{Kind: ast.TypeReference, Target: target, Mutable: x.Mutable, RefOwnKind: ownKind, Strategy: ast.StrategyStack, Span: x.Span}, nil

	case *ast.CallExpr:
		return c.inferCall(x)

	case *ast.IndexExpr:
		return c.inferIndex(x)

	case *ast.IfExpr:
		return c.inferIf(x)

	case *ast.MatchExpr:
		return c.inferMatch(x)

	case *ast.RegionExpr:
		return c.inferRegion(x)

	case *ast.ConstructExpr:
		return c.inferConstruct(x)

	case *ast.CloneExpr:
		target, err := c.inferExpr(x.Target)
		if err != nil {
			return nil, err
		}
		resolved := c.unifier.Resolve(target)
		if resolved.Strategy != ast.StrategyInferred && resolved.Strategy != ast.StrategySmartPtr {
			c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryStrategy).
				Code("E_INCOMPATIBLE_STRATEGIES").Span(x.Span).
				Message("clone() is only defined on SmartPtr values, found %s", resolved.Strategy).Build())
		}
		return target, nil

	case *ast.FreeExpr:
		target, err := c.inferExpr(x.Target)
		if err != nil {
			return nil, err
		}
		resolved := c.unifier.Resolve(target)
		if resolved.Strategy != ast.StrategyInferred && resolved.Strategy != ast.StrategyManual {
			c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryStrategy).
				Code("E_INCOMPATIBLE_STRATEGIES").Span(x.Span).
				Message("free() is only defined on Manual values, found %s", resolved.Strategy).Build())
			return nil, &types.Error{Kind: types.ErrIncompatibleStrategies, Message: "free() on non-Manual value"}
		}
		return ast.NewPrimitive(ast.PrimUnit, ast.StrategyStack), nil

	case *ast.BlockExpr:
		return c.inferBlock(x.Body)

	default:
		return c.unifier.Fresh(), nil
	}
}

func (c *Checker) inferBinary(x *ast.BinaryExpr) (*ast.Type, error) {
	left, err := c.inferExpr(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(x.Right)
	if err != nil {
		return nil, err
	}
	if err := c.unifier.Unify(left, right); err != nil {
		c.reportUnify(x.Span, err)
		return nil, err
	}

	if x.Op.IsComparison() {
		return ast.NewPrimitive(ast.PrimBool, ast.StrategyStack), nil
	}

	resolved := c.unifier.Resolve(left)
	if resolved.Kind == ast.TypePrimitive && !resolved.Prim.IsNumeric() && x.Op.IsArithmetic() {
		return nil, c.typeError(x, "arithmetic operator %s requires a numeric primitive, found %s", x.Op, resolved.Prim)
	}

	return left, nil
}

func (c *Checker) inferCall(x *ast.CallExpr) (*ast.Type, error) {
	calleeType, err := c.inferExpr(x.Callee)
	if err != nil {
		return nil, err
	}
	resolved := c.unifier.Resolve(calleeType)
	if resolved.Kind != ast.TypeFunction {
		// Calling a not-yet-resolved variable: synthesize a function shape
		// from the call site and let unification pin the callee down.
		argTypes := make([]*ast.Type, len(x.Args))
		for i, a := range x.Args {
			at, err := c.inferExpr(a)
			if err != nil {
				return nil, err
			}
			argTypes[i] = at
		}
		ret := c.unifier.Fresh()
		fnShape := &ast.Type{Kind: ast.TypeFunction, Params: argTypes, Ret: ret, Strategy: ast.StrategyStack}
		if err := c.unifier.Unify(calleeType, fnShape); err != nil {
			c.reportUnify(x.Span, err)
			return nil, err
		}
		return ret, nil
	}

	if len(x.Args) != len(resolved.Params) {
		return nil, c.typeError(x, "call expects %d arguments, found %d", len(resolved.Params), len(x.Args))
	}

	for i, a := range x.Args {
		argType, err := c.inferExpr(a)
		if err != nil {
			return nil, err
		}
		// Unify each argument type with the parameter type including
		// strategy; a strategy mismatch is not an outright error but
		// triggers coercion via the join table.
		if err := c.unifier.Unify(resolved.Params[i], argType); err != nil {
			c.reportUnify(a.NodeSpan(), err)
			return nil, err
		}
	}

	c.checkContractCarriage(x, resolved.Contract)

	return resolved.Ret, nil
}

func (c *Checker) inferIndex(x *ast.IndexExpr) (*ast.Type, error) {
	base, err := c.inferExpr(x.Base)
	if err != nil {
		return nil, err
	}
	idx, err := c.inferExpr(x.Index)
	if err != nil {
		return nil, err
	}
	resolvedIdx := c.unifier.Resolve(idx)
	if resolvedIdx.Kind == ast.TypePrimitive && !resolvedIdx.Prim.IsInteger() {
		return nil, c.typeError(x, "index expression must have integer type, found %s", resolvedIdx.Prim)
	}

	resolvedBase := c.unifier.Resolve(base)
	switch resolvedBase.Kind {
	case ast.TypeArray, ast.TypeSlice:
		return resolvedBase.Elem, nil
	default:
		return c.unifier.Fresh(), nil
	}
}

func (c *Checker) inferIf(x *ast.IfExpr) (*ast.Type, error) {
	condType, err := c.inferExpr(x.Cond)
	if err != nil {
		return nil, err
	}
	if err := c.unifier.Unify(condType, ast.NewPrimitive(ast.PrimBool, ast.StrategyStack)); err != nil {
		c.reportUnify(x.Cond.NodeSpan(), err)
		return nil, err
	}

	thenType, err := c.inferBlock(x.Then)
	if err != nil {
		return nil, err
	}

	if x.Else == nil {
		return thenType, nil
	}

	elseType, err := c.inferBlock(x.Else)
	if err != nil {
		return nil, err
	}

	if err := c.unifier.Unify(thenType, elseType); err != nil {
		c.reportUnify(x.Span, err)
		return nil, err
	}

	return thenType, nil
}

func (c *Checker) inferMatch(x *ast.MatchExpr) (*ast.Type, error) {
	if _, err := c.inferExpr(x.Scrutinee); err != nil {
		return nil, err
	}

	var result *ast.Type
	for _, arm := range x.Arms {
		armType, err := c.inferExpr(arm.Body)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = armType
			continue
		}
		if err := c.unifier.Unify(result, armType); err != nil {
			c.reportUnify(arm.Span, err)
			return nil, err
		}
	}

	if result == nil {
		return ast.NewPrimitive(ast.PrimUnit, ast.StrategyStack), nil
	}

	return result, nil
}

// inferRegion checks `region NAME { body }`. Per , the block's
// result type cannot escape the region as Region-strategy.
func (c *Checker) inferRegion(x *ast.RegionExpr) (*ast.Type, error) {
	c.liveRegions[x.Name] = true
	bodyType, err := c.inferBlock(x.Body)
	delete(c.liveRegions, x.Name)
	if err != nil {
		return nil, err
	}

	resolved := c.unifier.Resolve(bodyType)
	if resolved.Strategy == ast.StrategyRegion && resolved.RegionID == x.Name {
		c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryStrategy).
			Code("E_REGION_ESCAPE").Span(x.Span).
			Message("value allocated in region %q escapes its region", c.interner.Resolve(x.Name)).Build())
		return nil, &types.Error{Kind: types.ErrRegionEscape, Message: "region escape"}
	}

	return bodyType, nil
}

// inferConstruct checks wrapper-type constructors.
func (c *Checker) inferConstruct(x *ast.ConstructExpr) (*ast.Type, error) {
	var argType *ast.Type
	if x.Arg != nil {
		var err error
		argType, err = c.inferExpr(x.Arg)
		if err != nil {
			return nil, err
		}
	} else {
		argType = c.unifier.Fresh()
	}

	strat := x.Kind.Strategy()

	if strat == ast.StrategyRegion {
		if len(c.liveRegions) == 0 {
			c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryStrategy).
				Code("E_REGION_ESCAPE").Span(x.Span).
				Message("RegionPtr::new requires a live region").Build())
			return nil, &types.Error{Kind: types.ErrRegionEscape, Message: "RegionPtr::new outside a live region"}
		}
	}

	result := &ast.Type{
		Kind:     argType.Kind,
		Prim:     argType.Prim,
		Elem:     argType.Elem,
		Len:      argType.Len,
		Fields:   argType.Fields,
		Params:   argType.Params,
		Ret:      argType.Ret,
		DeclID:   argType.DeclID,
		Args:     argType.Args,
		Strategy: strat,
		Span:     x.Span,
	}

	if strat == ast.StrategyRegion {
		// Bind to the innermost live region; the builder records which one.
		for name := range c.liveRegions {
			result.RegionID = name
		}
	}

	return result, nil
}
