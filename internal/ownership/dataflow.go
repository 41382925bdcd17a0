package ownership

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/source"
)

// walkBlock runs the dataflow over a block's statements in order,
// returning the state at the block's end and whether that end was already
// exit-obligation-checked by a terminal ReturnStmt (so a caller covering
// the whole function body knows not to check the same state twice).
// Bindings declared within the block are local to it; the caller's view
// of outer bindings carries through by reference (the same *VarState
// pointers), so moves of outer variables are visible after the block
// exits.
func (a *Analyzer) walkBlock(st State, b *ast.Block, blockSpan source.Span) (State, bool) {
	var borrowersHere []ast.SymbolID
	var ownersHere []ast.SymbolID
	terminated := false
	for _, stmt := range b.Stmts {
		st = a.walkStmt(st, stmt)
		_, terminated = stmt.(*ast.ReturnStmt)
		if let, ok := stmt.(*ast.LetStmt); ok {
			if _, isRef := let.Init.(*ast.RefExpr); isRef {
				borrowersHere = append(borrowersHere, let.Symbol)
			} else {
				ownersHere = append(ownersHere, let.Symbol)
			}
		}
	}
	if b.Tail != nil {
		st = a.walkExpr(st, b.Tail)
		terminated = false
	}

	for _, borrower := range borrowersHere {
		a.releaseBorrow(st, borrower)
	}

	// A binding declared in this block is about to go out of scope; any
	// borrow still outstanding against it at this point would dangle once
	// its storage is reclaimed.
	for _, owner := range ownersHere {
		if BorrowOutlivesOwner(st[owner]) {
			a.report("E_BORROW_OUTLIVES_OWNER", diagnostic.CategoryOwnership, blockSpan,
				"%q goes out of scope while still borrowed", a.symbolName(owner))
		}
	}

	return st, terminated
}

// releaseBorrow returns a block-scoped reference's owner to Owned (shared
// case: drops just this borrow; exclusive case: clears it outright),
// mirroring "On expiry, state returns to Owned".
func (a *Analyzer) releaseBorrow(st State, borrower ast.SymbolID) {
	owner, ok := a.borrowOwner[borrower]
	if !ok {
		return
	}
	ownerState, ok := st[owner]
	if !ok {
		return
	}

	if a.borrowMutable[borrower] {
		if ownerState.Exclusive != nil && ownerState.Exclusive.Borrower == borrower {
			ownerState.Exclusive = nil
			ownerState.Kind = ast.OwnershipOwned
		}
		return
	}

	filtered := ownerState.Borrows[:0]
	for _, b := range ownerState.Borrows {
		if b.Borrower != borrower {
			filtered = append(filtered, b)
		}
	}
	ownerState.Borrows = filtered
	if len(ownerState.Borrows) == 0 && ownerState.Kind == ast.OwnershipBorrowedShared {
		ownerState.Kind = ast.OwnershipOwned
	}
}

func (a *Analyzer) walkStmt(st State, stmt ast.Stmt) State {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if s.Init != nil {
			if ref, ok := s.Init.(*ast.RefExpr); ok {
				st = a.walkBorrow(st, s.Symbol, ref)
				return st
			}
			st = a.walkExpr(st, s.Init)
		}
		v := &VarState{Kind: ast.OwnershipOwned}
		if s.DeclType != nil {
			switch s.DeclType.Strategy {
			case ast.StrategyLinear:
				a.linearSymbols[s.Symbol] = true
			case ast.StrategyManual:
				a.manualSymbols[s.Symbol] = true
				v.ManualPending = a.isAllocatingConstruct(s.Init)
			case ast.StrategyRegion:
				a.regionOf[s.Symbol] = s.DeclType.RegionID
			}
		}
		st[s.Symbol] = v
		return st

	case *ast.ExprStmt:
		return a.walkExpr(st, s.X)

	case *ast.ReturnStmt:
		if s.Value != nil {
			st = a.walkExpr(st, s.Value)
			if ClassifyReturn(a.typeOf(s.Value)) == EscapeToRegion {
				a.report("E_REGION_ESCAPE", diagnostic.CategoryOwnership, s.Span,
					"region-allocated value escapes its region across the function return")
			}
		}
		a.checkExitObligations(st, s.Span)
		return st

	case *ast.AssignStmt:
		st = a.walkExpr(st, s.Value)
		if id, ok := s.Target.(*ast.Ident); ok {
			st.get(id.Symbol).Kind = ast.OwnershipOwned
		}
		return st

	case *ast.ForStmt:
		a.loopDepth++
		inner := st.clone()
		inner[s.Symbol] = &VarState{Kind: ast.OwnershipOwned}
		inner, _ = a.walkBlock(inner, s.Body, s.Span)
		a.loopDepth--
		// A statically-bounded loop's body runs zero or more times; model
		// this conservatively as "may or may not have executed" by joining
		// the pre- and post-loop states, so a move inside the loop body is
		// treated as possibly-consumed afterward.
		return join(st, inner)

	case *ast.RegionStmt:
		st, _ = a.walkBlock(st, s.Body, s.Span)
		return st

	case *ast.BreakStmt, *ast.ContinueStmt:
		return st
	}
	return st
}

// isAllocatingConstruct reports whether e is a ManualPtr::new/alloc
// constructor call, used to decide whether a Manual binding starts with an
// outstanding free obligation.
func (a *Analyzer) isAllocatingConstruct(e ast.Expr) bool {
	c, ok := e.(*ast.ConstructExpr)
	return ok && (c.Kind == ast.ConstructManualPtrNew || c.Kind == ast.ConstructManualPtrAlloc)
}

func (a *Analyzer) walkExpr(st State, expr ast.Expr) State {
	switch e := expr.(type) {
	case *ast.Ident:
		a.readSymbol(st, e.Symbol, e.Span)
		return st

	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit:
		return st

	case *ast.BinaryExpr:
		st = a.walkExpr(st, e.Left)
		return a.walkExpr(st, e.Right)

	case *ast.UnaryExpr:
		return a.walkExpr(st, e.Operand)

	case *ast.RefExpr:
		// A bare `&x` not bound to a let (e.g. passed directly as a call
		// argument) is a transient borrow: create it, observe, release.
		return a.walkTransientBorrow(st, e)

	case *ast.CallExpr:
		st = a.walkExpr(st, e.Callee)
		for _, arg := range e.Args {
			st = a.walkExpr(st, arg)
		}
		return st

	case *ast.IndexExpr:
		st = a.walkExpr(st, e.Base)
		return a.walkExpr(st, e.Index)

	case *ast.IfExpr:
		st = a.walkExpr(st, e.Cond)
		thenSt, _ := a.walkBlock(st.clone(), e.Then, e.Span)
		var elseSt State
		if e.Else != nil {
			elseSt, _ = a.walkBlock(st.clone(), e.Else, e.Span)
		} else {
			elseSt = st.clone()
		}
		return join(thenSt, elseSt)

	case *ast.MatchExpr:
		st = a.walkExpr(st, e.Scrutinee)
		var merged State
		for _, arm := range e.Arms {
			armSt := a.walkExpr(st.clone(), arm.Body)
			if merged == nil {
				merged = armSt
			} else {
				merged = join(merged, armSt)
			}
		}
		if merged == nil {
			return st
		}
		return merged

	case *ast.RegionExpr:
		st, _ = a.walkBlock(st, e.Body, e.Span)
		return st

	case *ast.ConstructExpr:
		if e.Arg != nil {
			st = a.walkExpr(st, e.Arg)
		}
		return st

	case *ast.CloneExpr:
		return a.walkExpr(st, e.Target)

	case *ast.FreeExpr:
		st = a.walkExpr(st, e.Target)
		if id, ok := e.Target.(*ast.Ident); ok {
			v := st.get(id.Symbol)
			if !v.ManualPending {
				a.report("E_DOUBLE_FREE", diagnostic.CategoryOwnership, e.Span,
					"%q was already freed or was never allocated", a.symbolName(id.Symbol))
			}
			v.ManualPending = false
		}
		return st

	case *ast.BlockExpr:
		st, _ = a.walkBlock(st, e.Body, e.Span)
		return st

	default:
		return st
	}
}

// readSymbol applies the read rule: reading an Owned symbol of
// non-copyable type is a move; reading a Consumed symbol is
// E_USE_AFTER_MOVE.
func (a *Analyzer) readSymbol(st State, id ast.SymbolID, span source.Span) {
	v := st.get(id)

	switch v.Kind {
	case ast.OwnershipConsumed:
		a.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryOwnership).
			Code("E_USE_AFTER_MOVE").Span(span).
			Message("use of moved value %q", a.symbolName(id)).
			Related(v.MovedAt, "value moved here").
			Build())
		return
	case ast.OwnershipBorrowedExclusive:
		// A read of a symbol in this state is neither reported nor
		// treated as a move. By-&mut parameters start in this state too;
		// a read of an owner while its exclusive borrow is live is not
		// checked for conflicts here.
		return
	}

	sym := a.scopes.Symbol(id)
	nonCopyable := sym != nil && sym.DeclaredType != nil && sym.DeclaredType.IsNonCopyable()
	if nonCopyable {
		v.Kind = ast.OwnershipConsumed
		v.MovedAt = span
	}
}

// walkBorrow handles `let r = &x;` / `let r = &mut x;`, creating a
// borrow of x attributed to the new binding r.
func (a *Analyzer) walkBorrow(st State, borrower ast.SymbolID, ref *ast.RefExpr) State {
	targetID, ok := identOf(ref.Target)
	if !ok {
		st = a.walkExpr(st, ref.Target)
		st[borrower] = &VarState{Kind: ast.OwnershipOwned}
		return st
	}

	owner := st.get(targetID)
	if ref.Mutable {
		if owner.Kind != ast.OwnershipOwned {
			a.report("E_ALIASING_VIOLATION", diagnostic.CategoryOwnership, ref.Span,
				"cannot borrow %q as mutable: it is already borrowed", a.symbolName(targetID))
		}
		owner.Kind = ast.OwnershipBorrowedExclusive
		owner.Exclusive = &BorrowInfo{Borrower: borrower, Mutable: true, Site: ref.Span}
	} else {
		if owner.Kind == ast.OwnershipBorrowedExclusive {
			a.report("E_ALIASING_VIOLATION", diagnostic.CategoryOwnership, ref.Span,
				"cannot borrow %q as shared: it is already mutably borrowed", a.symbolName(targetID))
		}
		owner.Kind = ast.OwnershipBorrowedShared
		owner.Borrows = append(owner.Borrows, BorrowInfo{Borrower: borrower, Site: ref.Span})
	}

	a.borrowOwner[borrower] = targetID
	a.borrowMutable[borrower] = ref.Mutable

	st[borrower] = &VarState{Kind: ast.OwnershipBorrowedShared}
	return st
}

// walkTransientBorrow handles a `&x` / `&mut x` expression not bound to a
// let, e.g. passed directly as a call argument: the borrow exists only for
// the duration of evaluating the containing expression.
func (a *Analyzer) walkTransientBorrow(st State, ref *ast.RefExpr) State {
	targetID, ok := identOf(ref.Target)
	if !ok {
		return a.walkExpr(st, ref.Target)
	}

	owner := st.get(targetID)
	if ref.Mutable && owner.Kind != ast.OwnershipOwned {
		a.report("E_ALIASING_VIOLATION", diagnostic.CategoryOwnership, ref.Span,
			"cannot borrow %q as mutable: it is already borrowed", a.symbolName(targetID))
	}
	if !ref.Mutable && owner.Kind == ast.OwnershipBorrowedExclusive {
		a.report("E_ALIASING_VIOLATION", diagnostic.CategoryOwnership, ref.Span,
			"cannot borrow %q as shared: it is already mutably borrowed", a.symbolName(targetID))
	}
	return st
}

func identOf(e ast.Expr) (ast.SymbolID, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return 0, false
	}
	return id.Symbol, true
}
