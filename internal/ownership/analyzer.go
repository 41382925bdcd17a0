package ownership

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/check"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/resolver"
	"github.com/101shaan/Bract/internal/source"
)

// Analyzer runs the per-function ownership and lifetime dataflow pass. One
// Analyzer is used per function.
type Analyzer struct {
	scopes   *resolver.ScopeTree
	interner *intern.Interner
	types    check.ExprTypes
	diags    *diagnostic.WorkerBuffer

	linearSymbols map[ast.SymbolID]bool
	manualSymbols map[ast.SymbolID]bool
	regionOf      map[ast.SymbolID]intern.Id

	// borrowOwner/borrowMutable record, for each let-bound reference
	// symbol, which symbol it borrows and whether that borrow is
	// exclusive — used to release the borrow when the reference's own
	// enclosing block exits.
	borrowOwner   map[ast.SymbolID]ast.SymbolID
	borrowMutable map[ast.SymbolID]bool

	loopDepth int
}

// New creates an ownership analyzer fed by the type checker's expression
// type map.
func New(scopes *resolver.ScopeTree, interner *intern.Interner, types check.ExprTypes, diags *diagnostic.WorkerBuffer) *Analyzer {
	return &Analyzer{
		scopes:        scopes,
		interner:      interner,
		types:         types,
		diags:         diags,
		linearSymbols: make(map[ast.SymbolID]bool),
		manualSymbols: make(map[ast.SymbolID]bool),
		regionOf:      make(map[ast.SymbolID]intern.Id),
		borrowOwner:   make(map[ast.SymbolID]ast.SymbolID),
		borrowMutable: make(map[ast.SymbolID]bool),
	}
}

// AnalyzeFunction walks fn's body and reports every ownership violation it
// finds. It returns an error if any fatal violation occurred.
func (a *Analyzer) AnalyzeFunction(fn *ast.FunctionDecl) error {
	st := newState()

	for _, p := range fn.Params {
		sym := a.scopes.Symbol(p.Symbol)
		switch p.Kind {
		case ast.ParamByRef:
			st[p.Symbol] = &VarState{Kind: ast.OwnershipBorrowedShared}
		case ast.ParamByMutRef:
			st[p.Symbol] = &VarState{Kind: ast.OwnershipBorrowedExclusive}
		default:
			st[p.Symbol] = &VarState{Kind: ast.OwnershipOwned}
			if sym != nil && sym.DeclaredType != nil && sym.DeclaredType.Strategy == ast.StrategyLinear {
				a.linearSymbols[p.Symbol] = true
			}
		}
	}

	failed := false
	terminated := false
	if fn.Body != nil {
		st, terminated = a.walkBlock(st, fn.Body, fn.Span)
	}

	// A body whose last statement is an explicit return already had its
	// exit obligations checked there; checking again here would
	// double-report every unmet obligation.
	if !terminated {
		a.checkExitObligations(st, fn.Span)
	}
	if a.diags.HasErrors() {
		failed = true
	}

	if failed {
		return errOwnership
	}
	return nil
}

// errOwnership is a sentinel; callers only need to know whether analysis
// was fatal, the diagnostics carry the detail.
var errOwnership = &ownershipError{}

type ownershipError struct{}

func (*ownershipError) Error() string { return "ownership analysis reported a fatal error" }

// checkExitObligations verifies, at one function-exit point, that every
// Linear binding is Consumed and every Manual binding has been freed.
func (a *Analyzer) checkExitObligations(st State, span source.Span) {
	for sym := range a.linearSymbols {
		v := st[sym]
		if v == nil || v.Kind != ast.OwnershipConsumed {
			a.report("E_LINEAR_NOT_CONSUMED", diagnostic.CategoryOwnership, span,
				"linear binding %q is not consumed on every exit path", a.symbolName(sym))
		}
	}
	for sym := range a.manualSymbols {
		v := st[sym]
		if v != nil && v.ManualPending {
			a.report("E_MANUAL_NOT_FREED", diagnostic.CategoryOwnership, span,
				"manual allocation %q is missing a free() on this exit path", a.symbolName(sym))
		}
	}
}

func (a *Analyzer) symbolName(id ast.SymbolID) string {
	sym := a.scopes.Symbol(id)
	if sym == nil {
		return "<unknown>"
	}
	return sym.Name
}

func (a *Analyzer) report(code string, cat diagnostic.Category, span source.Span, format string, args ...interface{}) {
	a.diags.Report(diagnostic.New().Error().Category(cat).Code(code).Span(span).Message(format, args...).Build())
}

func (a *Analyzer) typeOf(e ast.Expr) *ast.Type {
	if t, ok := a.types[e]; ok {
		return t
	}
	return nil
}
