package bir

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/check"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/resolver"
)

// Builder lowers one type-checked function to BIR. One Builder is used
// per function, treating a function as the unit of work throughout the
// pipeline.
type Builder struct {
	scopes   *resolver.ScopeTree
	interner *intern.Interner
	types    check.ExprTypes

	fn      *Function
	cur     *BasicBlock
	nextTmp int
	nextBlk int

	// slots maps a symbol to the SSA value currently holding it.
	slots map[ast.SymbolID]string
	// manualPending mirrors internal/ownership's must-free obligation map:
	// true once a Manual binding is declared, false once free() discharges
	// it. Scope-exit cleanup does not read it.
	manualPending map[ast.SymbolID]bool
	// smartPtrLive lists SmartPtr-strategy bindings live in the current
	// scope, in declaration order, for reverse-order ArcDecref cleanup.
	smartPtrLive []ast.SymbolID
	regionStack  []string
}

// NewBuilder creates a BIR builder for one function.
func NewBuilder(scopes *resolver.ScopeTree, interner *intern.Interner, types check.ExprTypes) *Builder {
	return &Builder{
		scopes:        scopes,
		interner:      interner,
		types:         types,
		slots:         make(map[ast.SymbolID]string),
		manualPending: make(map[ast.SymbolID]bool),
	}
}

func (b *Builder) tmp() string {
	b.nextTmp++
	return fmt.Sprintf("%%t%d", b.nextTmp)
}

func (b *Builder) block(label string) *BasicBlock {
	b.nextBlk++
	bb := &BasicBlock{Label: fmt.Sprintf("%s.%d", label, b.nextBlk)}
	b.fn.Blocks = append(b.fn.Blocks, bb)
	return bb
}

func (b *Builder) emit(in Instr) { b.cur.Instr = append(b.cur.Instr, in) }

// Build lowers fn's body into a *Function. fn must already be fully
// type-checked (every expression present in types).
func (b *Builder) Build(fn *ast.FunctionDecl, name string) *Function {
	b.fn = &Function{Name: name, Contract: fn.Contract}
	for _, p := range fn.Params {
		strat := ast.StrategyStack
		if sym := b.scopes.Symbol(p.Symbol); sym != nil && sym.DeclaredType != nil {
			strat = sym.DeclaredType.Strategy
		}
		ref := b.tmp()
		b.fn.Params = append(b.fn.Params, Param{Name: b.symbolName(p.Symbol), Ref: ref, Strategy: strat})
		b.slots[p.Symbol] = ref
	}

	entry := b.block("entry")
	b.cur = entry

	if fn.Body != nil {
		v := b.lowerBlock(fn.Body)
		if b.cur.Term == nil {
			b.emitCleanup()
			if v != nil {
				b.cur.Term = Return{Val: v}
			} else {
				b.cur.Term = Return{}
			}
		}
	} else if b.cur.Term == nil {
		b.cur.Term = Return{}
	}

	return b.fn
}

func (b *Builder) symbolName(id ast.SymbolID) string {
	if sym := b.scopes.Symbol(id); sym != nil {
		return sym.Name
	}
	return "<unknown>"
}

func (b *Builder) internName(id intern.Id) string {
	return b.interner.Resolve(id)
}

// isNonCopyable reports whether reading id's declared type moves rather
// than copies, per its declared strategy (Linear and Manual values are
// never copyable).
func (b *Builder) isNonCopyable(id ast.SymbolID) bool {
	sym := b.scopes.Symbol(id)
	return sym != nil && sym.DeclaredType != nil && sym.DeclaredType.IsNonCopyable()
}

// sizeOf returns the byte size an Allocate should reserve for t, computed
// from its primitive width rather than a fixed constant. Non-primitive
// shapes (structs, arrays, references, pointers, and unresolved types)
// fall back to a conservative pointer-sized 8, since this tree carries no
// struct/array layout pass.
func sizeOf(t *ast.Type) uint64 {
	if t == nil || t.Kind != ast.TypePrimitive {
		return 8
	}
	switch t.Prim {
	case ast.PrimI8, ast.PrimU8, ast.PrimBool:
		return 1
	case ast.PrimI16, ast.PrimU16:
		return 2
	case ast.PrimI32, ast.PrimU32, ast.PrimF32, ast.PrimChar:
		return 4
	case ast.PrimI64, ast.PrimU64, ast.PrimF64:
		return 8
	case ast.PrimUnit:
		return 0
	default:
		return 8
	}
}

// emitCleanup emits reverse-declaration-order scope-exit cleanups: ArcDecref
// for live SmartPtr bindings, then RegionExit for every region still open,
// innermost first. It emits no Free: a Free appears only where the body
// calls free() explicitly.
func (b *Builder) emitCleanup() {
	for i := len(b.smartPtrLive) - 1; i >= 0; i-- {
		sym := b.smartPtrLive[i]
		if ref, ok := b.slots[sym]; ok {
			b.emit(ArcDecref{Target: RefValue(ref)})
		}
	}
	for i := len(b.regionStack) - 1; i >= 0; i-- {
		b.emit(RegionExit{Region: b.regionStack[i]})
	}
}

// lowerBlock lowers a sequence of statements plus optional tail expression,
// returning the tail's value (nil if the block has none or control flow
// already diverged).
func (b *Builder) lowerBlock(blk *ast.Block) *Value {
	for _, stmt := range blk.Stmts {
		if b.cur.Term != nil {
			return nil
		}
		b.lowerStmt(stmt)
	}
	if b.cur.Term != nil {
		return nil
	}
	if blk.Tail != nil {
		v := b.lowerExpr(blk.Tail)
		return &v
	}
	return nil
}

func (b *Builder) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		b.lowerLet(s)
	case *ast.ExprStmt:
		b.lowerExpr(s.X)
	case *ast.ReturnStmt:
		var v *Value
		if s.Value != nil {
			x := b.lowerExpr(s.Value)
			v = &x
		}
		b.emitCleanup()
		b.cur.Term = Return{Val: v}
	case *ast.AssignStmt:
		v := b.lowerExpr(s.Value)
		if id, ok := s.Target.(*ast.Ident); ok {
			b.slots[id.Symbol] = v.Ref
		}
	case *ast.ForStmt:
		b.lowerFor(s)
	case *ast.RegionStmt:
		b.lowerRegionBody(b.internName(s.Name), func() { b.lowerBlock(s.Body) })
	case *ast.BreakStmt, *ast.ContinueStmt:
		// break/continue emit no jump: the loop body is lowered as
		// straight-line code that always falls through to lowerFor's join
		// block.
	}
}

// lowerLet implements `let x: T = e;` rule.
func (b *Builder) lowerLet(s *ast.LetStmt) {
	var strat ast.MemoryStrategy = ast.StrategyStack
	var declType *ast.Type
	if sym := b.scopes.Symbol(s.Symbol); sym != nil && sym.DeclaredType != nil {
		declType = sym.DeclaredType
		strat = declType.Strategy
	}

	if s.Init == nil {
		return
	}
	v := b.lowerExpr(s.Init)

	switch strat {
	case ast.StrategyStack:
		slot := b.tmp()
		b.emit(Allocate{Dst: slot, Strategy: ast.StrategyStack, Size: sizeOf(declType)})
		b.emit(Store{Addr: RefValue(slot), Val: v})
		b.slots[s.Symbol] = slot
	case ast.StrategyManual:
		b.manualPending[s.Symbol] = true
		b.slots[s.Symbol] = v.Ref
	case ast.StrategySmartPtr:
		b.smartPtrLive = append(b.smartPtrLive, s.Symbol)
		b.slots[s.Symbol] = v.Ref
	default:
		b.slots[s.Symbol] = v.Ref
	}
}

func (b *Builder) lowerRegionBody(region string, body func()) {
	b.emit(RegionEnter{Region: region})
	b.regionStack = append(b.regionStack, region)
	body()
	b.regionStack = b.regionStack[:len(b.regionStack)-1]
	if b.cur.Term == nil {
		b.emit(RegionExit{Region: region})
	}
}

// lowerFor implements a statically-bounded loop as a three-block shape:
// preheader -> loop body -> join, matching "loops multiply
// the body cost" cost model (the cost engine walks this exact shape).
func (b *Builder) lowerFor(s *ast.ForStmt) {
	body := b.block("for.body")
	join := b.block("for.join")

	bound := uint64(0)
	if s.End > s.Start {
		bound = uint64(s.End - s.Start)
	}
	body.LoopBound = &bound

	b.cur.Term = Branch{Target: body.Label}
	b.cur = body
	b.lowerBlock(s.Body)
	if b.cur.Term == nil {
		b.cur.Term = Branch{Target: join.Label}
	}
	b.cur = join
}

func (b *Builder) lowerExpr(expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.IntLit:
		return IntValue(e.Value)
	case *ast.BoolLit:
		return BoolValue(e.Value)
	case *ast.FloatLit:
		dst := b.tmp()
		b.emit(BinOp{Dst: dst, Op: ast.OpAdd, LHS: IntValue(0), RHS: IntValue(0)})
		return RefValue(dst)
	case *ast.Ident:
		ref, ok := b.slots[e.Symbol]
		if !ok {
			return RefValue(b.symbolName(e.Symbol))
		}
		if b.isNonCopyable(e.Symbol) {
			dst := b.tmp()
			b.emit(Move{Dst: dst, Source: ref, CheckConsumed: true})
			delete(b.slots, e.Symbol)
			return RefValue(dst)
		}
		return RefValue(ref)

	case *ast.BinaryExpr:
		lhs := b.lowerExpr(e.Left)
		rhs := b.lowerExpr(e.Right)
		dst := b.tmp()
		b.emit(BinOp{Dst: dst, Op: e.Op, LHS: lhs, RHS: rhs})
		return RefValue(dst)

	case *ast.UnaryExpr:
		return b.lowerExpr(e.Operand)

	case *ast.CallExpr:
		callee, _ := e.Callee.(*ast.Ident)
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.lowerExpr(a)
		}
		dst := b.tmp()
		name := "<indirect>"
		if callee != nil {
			name = b.symbolName(callee.Symbol)
		}
		var contract *ast.PerformanceContract
		if t, ok := b.types[e]; ok {
			contract = t.Contract
		}
		if contract != nil {
			b.emit(ProfilerHook{Location: name + ".enter"})
		}
		b.emit(Call{Dst: dst, Callee: name, Args: args, Contract: contract})
		if contract != nil {
			b.emit(ProfilerHook{Location: name + ".exit"})
		}
		return RefValue(dst)

	case *ast.IndexExpr:
		base := b.lowerExpr(e.Base)
		idx := b.lowerExpr(e.Index)
		lenDst := b.tmp()
		b.emit(Load{Dst: lenDst, Addr: base})
		b.emit(BoundsCheck{Base: base, Index: idx, Len: RefValue(lenDst)})
		dst := b.tmp()
		b.emit(Load{Dst: dst, Addr: base})
		return RefValue(dst)

	case *ast.RefExpr:
		return b.lowerExpr(e.Target)

	case *ast.IfExpr:
		return b.lowerIf(e)

	case *ast.MatchExpr:
		return b.lowerMatch(e)

	case *ast.RegionExpr:
		var result Value
		b.lowerRegionBody(b.internName(e.Name), func() {
			if v := b.lowerBlock(e.Body); v != nil {
				result = *v
			}
		})
		return result

	case *ast.ConstructExpr:
		return b.lowerConstruct(e)

	case *ast.CloneExpr:
		target := b.lowerExpr(e.Target)
		b.emit(ArcIncref{Target: target})
		return target

	case *ast.FreeExpr:
		target := b.lowerExpr(e.Target)
		if id, ok := e.Target.(*ast.Ident); ok {
			b.manualPending[id.Symbol] = false
		}
		b.emit(Free{Target: target})
		return Value{}

	case *ast.BlockExpr:
		if v := b.lowerBlock(e.Body); v != nil {
			return *v
		}
		return Value{}

	default:
		return Value{}
	}
}

// lowerConstruct implements constructor lowering rules.
func (b *Builder) lowerConstruct(e *ast.ConstructExpr) Value {
	var arg Value
	if e.Arg != nil {
		arg = b.lowerExpr(e.Arg)
	}
	size := sizeOf(b.types[e])
	dst := b.tmp()
	switch e.Kind {
	case ast.ConstructLinearNew:
		b.emit(Allocate{Dst: dst, Strategy: ast.StrategyLinear, Size: size})
		b.emit(Store{Addr: RefValue(dst), Val: arg})
	case ast.ConstructSmartPtrNew:
		b.emit(Allocate{Dst: dst, Strategy: ast.StrategySmartPtr, Size: size})
		b.emit(Store{Addr: RefValue(dst), Val: arg})
	case ast.ConstructRegionPtrNew:
		region := ""
		if len(b.regionStack) > 0 {
			region = b.regionStack[len(b.regionStack)-1]
		}
		b.emit(Allocate{Dst: dst, Strategy: ast.StrategyRegion, Size: size, Region: region})
		b.emit(Store{Addr: RefValue(dst), Val: arg})
	case ast.ConstructManualPtrNew, ast.ConstructManualPtrAlloc:
		b.emit(Allocate{Dst: dst, Strategy: ast.StrategyManual, Size: size})
		if e.Arg != nil {
			b.emit(Store{Addr: RefValue(dst), Val: arg})
		}
	default:
		b.emit(Allocate{Dst: dst, Strategy: ast.StrategyStack, Size: size})
	}
	return RefValue(dst)
}

// lowerIf lowers an if/else into three blocks (then/else/join), the
// standard SSA shape; both arms' results are passed as the join block's
// single block argument, avoiding a φ-node.
func (b *Builder) lowerIf(e *ast.IfExpr) Value {
	cond := b.lowerExpr(e.Cond)

	thenBlk := b.block("if.then")
	var elseBlk *BasicBlock
	join := b.block("if.join")
	join.Args = []string{b.tmp()}

	elseLabel := join.Label
	if e.Else != nil {
		elseBlk = b.block("if.else")
		elseLabel = elseBlk.Label
	}

	b.cur.Term = CondBranch{Cond: cond, True: thenBlk.Label, False: elseLabel}

	b.cur = thenBlk
	thenVal := b.lowerBlock(e.Then)
	if b.cur.Term == nil {
		args := []Value{}
		if thenVal != nil {
			args = []Value{*thenVal}
		}
		b.cur.Term = Branch{Target: join.Label, Args: args}
	}

	if elseBlk != nil {
		b.cur = elseBlk
		elseVal := b.lowerBlock(e.Else)
		if b.cur.Term == nil {
			args := []Value{}
			if elseVal != nil {
				args = []Value{*elseVal}
			}
			b.cur.Term = Branch{Target: join.Label, Args: args}
		}
	}

	b.cur = join
	if len(join.Args) > 0 {
		return RefValue(join.Args[0])
	}
	return Value{}
}

// lowerMatch lowers each arm to its own block converging on a shared join
// block, generalizing lowerIf's then/else/join shape to N arms via a chain
// of dispatch blocks. Pattern discriminant testing is a parser/pattern
// concern this AST does not carry through to BIR (arm selection was
// already resolved and arm types already unified by internal/check); each
// dispatch edge here exists only to give every arm block a real
// predecessor so the CFG stays well-formed for the cost engine and DCE.
func (b *Builder) lowerMatch(e *ast.MatchExpr) Value {
	_ = b.lowerExpr(e.Scrutinee)
	join := b.block("match.join")
	join.Args = []string{b.tmp()}

	dispatch := b.cur
	for i, arm := range e.Arms {
		armBlk := b.block("match.arm")
		if i == len(e.Arms)-1 {
			dispatch.Term = Branch{Target: armBlk.Label}
		} else {
			next := b.block("match.test")
			dispatch.Term = CondBranch{Cond: BoolValue(true), True: armBlk.Label, False: next.Label}
			dispatch = next
		}

		b.cur = armBlk
		v := b.lowerExpr(arm.Body)
		if b.cur.Term == nil {
			b.cur.Term = Branch{Target: join.Label, Args: []Value{v}}
		}
	}

	b.cur = join
	return RefValue(join.Args[0])
}
