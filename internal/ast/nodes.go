package ast

import (
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/source"
)

// SymbolID identifies a resolved symbol (assigned by internal/resolver).
// It lives in this package, rather than resolver, so that identifier nodes
// can carry it without an import cycle.
type SymbolID uint32

// NoSymbol is the zero value meaning "not yet resolved".
const NoSymbol SymbolID = 0

// Node is implemented by every AST node.
type Node interface {
	NodeSpan() source.Span
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Item is implemented by every top-level declaration node.
type Item interface {
	Node
	itemNode()
}

// ---- Expressions ----

type Ident struct {
	Span   source.Span
	Name   intern.Id
	Symbol SymbolID // filled by the resolver; NoSymbol until then
}

func (n *Ident) NodeSpan() source.Span { return n.Span }
func (*Ident) exprNode()               {}

type IntLit struct {
	Span  source.Span
	Value int64
	Prim  Primitive // defaults to PrimI32 if unset by the parser
}

func (n *IntLit) NodeSpan() source.Span { return n.Span }
func (*IntLit) exprNode()               {}

type FloatLit struct {
	Span  source.Span
	Value float64
}

func (n *FloatLit) NodeSpan() source.Span { return n.Span }
func (*FloatLit) exprNode()               {}

type BoolLit struct {
	Span  source.Span
	Value bool
}

func (n *BoolLit) NodeSpan() source.Span { return n.Span }
func (*BoolLit) exprNode()               {}

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd
	OpLogOr
)

func (o BinOp) IsComparison() bool {
	return o == OpEq || o == OpNe || o == OpLt || o == OpLe || o == OpGt || o == OpGe
}

func (o BinOp) IsArithmetic() bool {
	return o == OpAdd || o == OpSub || o == OpMul || o == OpDiv || o == OpMod ||
		o == OpAnd || o == OpOr || o == OpXor || o == OpShl || o == OpShr
}

func (o BinOp) String() string {
	names := [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "==", "!=", "<", "<=", ">", ">=", "&&", "||"}
	if int(o) < len(names) {
		return names[o]
	}
	return "?"
}

type BinaryExpr struct {
	Span  source.Span
	Op    BinOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) NodeSpan() source.Span { return n.Span }
func (*BinaryExpr) exprNode()               {}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpDeref
)

type UnaryExpr struct {
	Span    source.Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) NodeSpan() source.Span { return n.Span }
func (*UnaryExpr) exprNode()               {}

// ParamKind classifies how a call argument is received: by-value consumes
// the argument (if non-copyable), by-reference only observes it.
type ParamKind int

const (
	ParamByValue ParamKind = iota
	ParamByRef
	ParamByMutRef
)

type CallExpr struct {
	Span   source.Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) NodeSpan() source.Span { return n.Span }
func (*CallExpr) exprNode()               {}

type IndexExpr struct {
	Span  source.Span
	Base  Expr
	Index Expr
}

func (n *IndexExpr) NodeSpan() source.Span { return n.Span }
func (*IndexExpr) exprNode()               {}

type RefExpr struct {
	Span    source.Span
	Target  Expr
	Mutable bool
}

func (n *RefExpr) NodeSpan() source.Span { return n.Span }
func (*RefExpr) exprNode()               {}

type IfExpr struct {
	Span source.Span
	Cond Expr
	Then *Block
	Else *Block // nil if there is no else-branch
}

func (n *IfExpr) NodeSpan() source.Span { return n.Span }
func (*IfExpr) exprNode()               {}

type MatchArm struct {
	Span source.Span
	// BindName is the identifier bound by this arm's pattern, if any.
	BindName intern.Id
	Body     Expr
}

type MatchExpr struct {
	Span       source.Span
	Scrutinee  Expr
	Arms       []MatchArm
}

func (n *MatchExpr) NodeSpan() source.Span { return n.Span }
func (*MatchExpr) exprNode()               {}

// RegionExpr is `region NAME { body }`. Its result type may not escape the
// region if that type still carries Region strategy.
type RegionExpr struct {
	Span source.Span
	Name intern.Id
	Body *Block
}

func (n *RegionExpr) NodeSpan() source.Span { return n.Span }
func (*RegionExpr) exprNode()               {}

// ConstructKind enumerates the wrapper-type constructor spellings.
type ConstructKind int

const (
	ConstructLinearNew ConstructKind = iota
	ConstructSmartPtrNew
	ConstructRegionPtrNew
	ConstructManualPtrNew
	ConstructManualPtrAlloc
)

func (k ConstructKind) Strategy() MemoryStrategy {
	switch k {
	case ConstructLinearNew:
		return StrategyLinear
	case ConstructSmartPtrNew:
		return StrategySmartPtr
	case ConstructRegionPtrNew:
		return StrategyRegion
	case ConstructManualPtrNew, ConstructManualPtrAlloc:
		return StrategyManual
	default:
		return StrategyInferred
	}
}

func (k ConstructKind) String() string {
	switch k {
	case ConstructLinearNew:
		return "LinearPtr::new"
	case ConstructSmartPtrNew:
		return "SmartPtr::new"
	case ConstructRegionPtrNew:
		return "RegionPtr::new"
	case ConstructManualPtrNew:
		return "ManualPtr::new"
	case ConstructManualPtrAlloc:
		return "ManualPtr::alloc"
	default:
		return "?"
	}
}

// ConstructExpr is a wrapper-type constructor expression, e.g.
// `LinearPtr::new(5)` or `RegionPtr::new(v)` (the latter only valid inside
// a live region).
type ConstructExpr struct {
	Span source.Span
	Kind ConstructKind
	Arg  Expr
}

func (n *ConstructExpr) NodeSpan() source.Span { return n.Span }
func (*ConstructExpr) exprNode()               {}

// CloneExpr is `a.clone()` for a SmartPtr-strategy value: it increments the
// refcount and yields a new binding to the same allocation.
type CloneExpr struct {
	Span   source.Span
	Target Expr
}

func (n *CloneExpr) NodeSpan() source.Span { return n.Span }
func (*CloneExpr) exprNode()               {}

// FreeExpr is an explicit `free(x)` call discharging a Manual-strategy
// must-free obligation.
type FreeExpr struct {
	Span   source.Span
	Target Expr
}

func (n *FreeExpr) NodeSpan() source.Span { return n.Span }
func (*FreeExpr) exprNode()               {}

// BlockExpr treats a block as an expression whose value is that of its
// Tail expression, if any.
type BlockExpr struct {
	Span source.Span
	Body *Block
}

func (n *BlockExpr) NodeSpan() source.Span { return n.Span }
func (*BlockExpr) exprNode()               {}

// ---- Statements ----

type LetStmt struct {
	Span     source.Span
	Name     intern.Id
	Symbol   SymbolID
	DeclType *Type // nil if elided; filled in by the checker either way
	Init     Expr
	Mutable  bool
}

func (n *LetStmt) NodeSpan() source.Span { return n.Span }
func (*LetStmt) stmtNode()               {}

type ExprStmt struct {
	Span source.Span
	X    Expr
}

func (n *ExprStmt) NodeSpan() source.Span { return n.Span }
func (*ExprStmt) stmtNode()               {}

type ReturnStmt struct {
	Span  source.Span
	Value Expr // nil for a bare `return;`
}

func (n *ReturnStmt) NodeSpan() source.Span { return n.Span }
func (*ReturnStmt) stmtNode()               {}

type AssignStmt struct {
	Span   source.Span
	Target Expr
	Value  Expr
}

func (n *AssignStmt) NodeSpan() source.Span { return n.Span }
func (*AssignStmt) stmtNode()               {}

// ForStmt is a statically-bounded counting loop `for i in Start..End { }`.
// A static iteration bound is required for decidable cost analysis in any
// function whose contract declares max_cost.
type ForStmt struct {
	Span   source.Span
	Var    intern.Id
	Symbol SymbolID
	Start  int64
	End    int64
	Body   *Block
}

func (n *ForStmt) NodeSpan() source.Span { return n.Span }
func (*ForStmt) stmtNode()               {}

type BreakStmt struct{ Span source.Span }

func (n *BreakStmt) NodeSpan() source.Span { return n.Span }
func (*BreakStmt) stmtNode()               {}

type ContinueStmt struct{ Span source.Span }

func (n *ContinueStmt) NodeSpan() source.Span { return n.Span }
func (*ContinueStmt) stmtNode()               {}

// RegionStmt mirrors RegionExpr at statement position.
type RegionStmt struct {
	Span source.Span
	Name intern.Id
	Body *Block
}

func (n *RegionStmt) NodeSpan() source.Span { return n.Span }
func (*RegionStmt) stmtNode()               {}

// Block is a lexical scope: "blocks may carry a Region binding".
// Region is 0 when the block introduces no region of its own.
type Block struct {
	Span   source.Span
	Stmts  []Stmt
	Region intern.Id
	// Tail is an optional trailing expression whose value is the block's
	// result (Rust-style implicit return).
	Tail Expr
}

func (n *Block) NodeSpan() source.Span { return n.Span }

// ---- Items ----

type Param struct {
	Span   source.Span
	Name   intern.Id
	Symbol SymbolID
	Type   *Type
	Kind   ParamKind
}

type FunctionDecl struct {
	Span     source.Span
	Name     intern.Id
	Symbol   SymbolID
	Params   []Param
	RetType  *Type
	Contract *PerformanceContract
	Body     *Block
	Public   bool
}

func (n *FunctionDecl) NodeSpan() source.Span { return n.Span }
func (*FunctionDecl) itemNode()               {}

type ConstDecl struct {
	Span   source.Span
	Name   intern.Id
	Symbol SymbolID
	Type   *Type
	Value  Expr
	Public bool
}

func (n *ConstDecl) NodeSpan() source.Span { return n.Span }
func (*ConstDecl) itemNode()               {}

// ModuleDecl groups items under a qualified name; qualified references
// `a::b::c` resolve left-to-right through nested ModuleDecls.
type ModuleDecl struct {
	Span   source.Span
	Name   intern.Id
	Symbol SymbolID
	Items  []Item
	Public bool
}

func (n *ModuleDecl) NodeSpan() source.Span { return n.Span }
func (*ModuleDecl) itemNode()               {}

// Module is the root of a single compiled file's AST.
type Module struct {
	Span  source.Span
	Name  intern.Id
	Items []Item
}
