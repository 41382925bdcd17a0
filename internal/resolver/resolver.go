package resolver

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/source"
)

// ErrorKind classifies a resolution failure.
type ErrorKind int

const (
	ErrDuplicateDefinition ErrorKind = iota
	ErrUnresolvedName
	ErrVisibilityViolation
)

func (k ErrorKind) Code() string {
	switch k {
	case ErrDuplicateDefinition:
		return "E_DUPLICATE_DEFINITION"
	case ErrUnresolvedName:
		return "E_UNRESOLVED_NAME"
	case ErrVisibilityViolation:
		return "E_VISIBILITY_VIOLATION"
	default:
		return "E_UNKNOWN"
	}
}

// Error is a resolution-phase diagnostic.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    source.Span
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message) }

// Result is the resolver's output: the AST is mutated in place (every
// Ident.Symbol field is filled) and a ScopeTree is returned alongside any
// errors collected.
type Result struct {
	Scopes *ScopeTree
	Errors []*Error
}

// Resolver implements a two-pass algorithm: pass one collects every item's
// declaration across the whole module so forward references resolve; pass
// two walks bodies binding each identifier to its declared symbol.
type Resolver struct {
	interner *intern.Interner
	scopes   *ScopeTree
	errors   []*Error
}

// New creates a resolver backed by the given interner (used to turn
// intern.Id identifier names back into strings for scope-table keys).
func New(interner *intern.Interner) *Resolver {
	return &Resolver{interner: interner, scopes: NewScopeTree()}
}

// Resolve name-resolves every item in mod, returning the populated scope
// tree and any diagnostics. Forward references within a module are allowed
// because declaration collection runs to completion before any reference
// is bound.
func (r *Resolver) Resolve(mod *ast.Module) *Result {
	moduleScope := r.scopes.NewScope(r.scopes.Root(), ScopeModule, r.name(mod.Name), mod.Span)

	r.collectItems(moduleScope, mod.Items)
	r.bindItems(moduleScope, mod.Items)

	return &Result{Scopes: r.scopes, Errors: r.errors}
}

func (r *Resolver) name(id intern.Id) string { return r.interner.Resolve(id) }

func (r *Resolver) fail(kind ErrorKind, span source.Span, format string, args ...interface{}) {
	r.errors = append(r.errors, &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span})
}

// ---- Pass 1: declaration collection ----

func (r *Resolver) collectItems(scope ScopeID, items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			vis := VisibilityPrivate
			if it.Public {
				vis = VisibilityPublic
			}
			id, ok := r.scopes.Declare(scope, r.name(it.Name), SymbolFn, vis, it.Span)
			if !ok {
				r.fail(ErrDuplicateDefinition, it.Span, "function %q already defined in this scope", r.name(it.Name))
			}
			it.Symbol = id
		case *ast.ConstDecl:
			vis := VisibilityPrivate
			if it.Public {
				vis = VisibilityPublic
			}
			id, ok := r.scopes.Declare(scope, r.name(it.Name), SymbolConst, vis, it.Span)
			if !ok {
				r.fail(ErrDuplicateDefinition, it.Span, "const %q already defined in this scope", r.name(it.Name))
			}
			it.Symbol = id
		case *ast.ModuleDecl:
			vis := VisibilityPrivate
			if it.Public {
				vis = VisibilityPublic
			}
			id, ok := r.scopes.Declare(scope, r.name(it.Name), SymbolModule, vis, it.Span)
			if !ok {
				r.fail(ErrDuplicateDefinition, it.Span, "module %q already defined in this scope", r.name(it.Name))
			}
			it.Symbol = id

			child := r.scopes.NewScope(scope, ScopeModule, r.name(it.Name), it.Span)
			r.collectItems(child, it.Items)
		}
	}
}

// ---- Pass 2: reference binding ----

func (r *Resolver) bindItems(scope ScopeID, items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			r.bindFunction(scope, it)
		case *ast.ConstDecl:
			if it.Value != nil {
				r.bindExpr(scope, it.Value)
			}
		case *ast.ModuleDecl:
			sym, _ := r.scopes.LookupLocal(scope, r.name(it.Name))
			child := sym.ScopeID
			for _, s := range r.scopes.Scope(scope).Children {
				if r.scopes.Scope(s).Name == r.name(it.Name) {
					child = s
					break
				}
			}
			r.bindItems(child, it.Items)
		}
	}
}

func (r *Resolver) bindFunction(scope ScopeID, fn *ast.FunctionDecl) {
	fnScope := r.scopes.NewScope(scope, ScopeFunction, r.name(fn.Name), fn.Span)

	for i := range fn.Params {
		p := &fn.Params[i]
		id, ok := r.scopes.Declare(fnScope, r.name(p.Name), SymbolParam, VisibilityPrivate, p.Span)
		if !ok {
			r.fail(ErrDuplicateDefinition, p.Span, "parameter %q already declared", r.name(p.Name))
		}
		p.Symbol = id
		if sym := r.scopes.Symbol(id); sym != nil {
			sym.DeclaredType = p.Type
		}
	}

	if fn.Body != nil {
		r.bindBlock(fnScope, fn.Body)
	}
}

func (r *Resolver) bindBlock(parent ScopeID, b *ast.Block) {
	scope := r.scopes.NewScope(parent, ScopeBlock, "", b.Span)
	if b.Region != 0 {
		s := r.scopes.Scope(scope)
		s.ActiveRegions = append(s.ActiveRegions, b.Region)
		s.Kind = ScopeRegion
	}

	for _, stmt := range b.Stmts {
		r.bindStmt(scope, stmt)
	}
	if b.Tail != nil {
		r.bindExpr(scope, b.Tail)
	}
}

func (r *Resolver) bindStmt(scope ScopeID, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if s.Init != nil {
			r.bindExpr(scope, s.Init)
		}
		id, ok := r.scopes.Declare(scope, r.name(s.Name), SymbolVar, VisibilityPrivate, s.Span)
		if !ok {
			// Re-declaration in the same scope is treated as shadowing, not
			// a duplicate-definition error: the new binding takes over the
			// name in this scope, so later references bind to it while
			// earlier ones keep the old symbol.
			delete(r.scopes.Scope(scope).Symbols, r.name(s.Name))
			id, _ = r.scopes.Declare(scope, r.name(s.Name), SymbolVar, VisibilityPrivate, s.Span)
		}
		s.Symbol = id
		if sym := r.scopes.Symbol(id); sym != nil {
			sym.Mutable = s.Mutable
			sym.DeclaredType = s.DeclType
		}
	case *ast.ExprStmt:
		r.bindExpr(scope, s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			r.bindExpr(scope, s.Value)
		}
	case *ast.AssignStmt:
		r.bindExpr(scope, s.Target)
		r.bindExpr(scope, s.Value)
	case *ast.ForStmt:
		loopScope := r.scopes.NewScope(scope, ScopeBlock, "", s.Span)
		id, _ := r.scopes.Declare(loopScope, r.name(s.Var), SymbolVar, VisibilityPrivate, s.Span)
		s.Symbol = id
		r.bindBlock(loopScope, s.Body)
	case *ast.RegionStmt:
		r.bindBlock(scope, s.Body)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// no names to resolve
	}
}

func (r *Resolver) bindExpr(scope ScopeID, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		sym, ok := r.scopes.Lookup(scope, r.name(e.Name))
		if !ok {
			r.fail(ErrUnresolvedName, e.Span, "unresolved name %q", r.name(e.Name))
			return
		}
		if sym.Visibility == VisibilityPrivate && sym.ScopeID != scope && !r.sameModuleChain(scope, sym.ScopeID) {
			r.fail(ErrVisibilityViolation, e.Span, "%q is not visible from this scope", r.name(e.Name))
			return
		}
		e.Symbol = sym.ID
	case *ast.BinaryExpr:
		r.bindExpr(scope, e.Left)
		r.bindExpr(scope, e.Right)
	case *ast.UnaryExpr:
		r.bindExpr(scope, e.Operand)
	case *ast.CallExpr:
		r.bindExpr(scope, e.Callee)
		for _, a := range e.Args {
			r.bindExpr(scope, a)
		}
	case *ast.IndexExpr:
		r.bindExpr(scope, e.Base)
		r.bindExpr(scope, e.Index)
	case *ast.RefExpr:
		r.bindExpr(scope, e.Target)
	case *ast.IfExpr:
		r.bindExpr(scope, e.Cond)
		r.bindBlock(scope, e.Then)
		if e.Else != nil {
			r.bindBlock(scope, e.Else)
		}
	case *ast.MatchExpr:
		r.bindExpr(scope, e.Scrutinee)
		for _, arm := range e.Arms {
			armScope := scope
			if arm.BindName != 0 {
				armScope = r.scopes.NewScope(scope, ScopeBlock, "", arm.Span)
				r.scopes.Declare(armScope, r.name(arm.BindName), SymbolVar, VisibilityPrivate, arm.Span)
			}
			r.bindExpr(armScope, arm.Body)
		}
	case *ast.RegionExpr:
		r.bindBlock(scope, e.Body)
	case *ast.ConstructExpr:
		if e.Arg != nil {
			r.bindExpr(scope, e.Arg)
		}
	case *ast.CloneExpr:
		r.bindExpr(scope, e.Target)
	case *ast.FreeExpr:
		r.bindExpr(scope, e.Target)
	case *ast.BlockExpr:
		r.bindBlock(scope, e.Body)
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit:
		// literals bind nothing
	}
}

// sameModuleChain is a conservative visibility check: a private symbol is
// visible from its own scope and any descendant scope.
func (r *Resolver) sameModuleChain(from, declScope ScopeID) bool {
	cur := from
	for {
		if cur == declScope {
			return true
		}
		s := r.scopes.Scope(cur)
		if s == nil || !s.HasParent {
			return false
		}
		cur = s.Parent
	}
}
