// Package resolver implements : it builds hierarchical scopes,
// resolves names to symbol IDs, and records visibility and mutability.
package resolver

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/source"
)

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolParam
	SymbolFn
	SymbolType
	SymbolModule
	SymbolConst
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "var"
	case SymbolParam:
		return "param"
	case SymbolFn:
		return "fn"
	case SymbolType:
		return "type"
	case SymbolModule:
		return "module"
	case SymbolConst:
		return "const"
	default:
		return "unknown"
	}
}

// Visibility controls cross-module lookup.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

func (v Visibility) String() string {
	if v == VisibilityPublic {
		return "public"
	}
	return "private"
}

// Symbol is a named entity in the program.
type Symbol struct {
	ID             ast.SymbolID
	Name           string
	Kind           SymbolKind
	DeclaredType   *ast.Type
	Visibility     Visibility
	Mutable        bool
	OwnershipState ast.Ownership
	ScopeID        ScopeID
	Span           source.Span
}

// ScopeID identifies a lexical scope.
type ScopeID uint32

// ScopeKind classifies a scope's purpose.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
	ScopeRegion
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeRegion:
		return "region"
	default:
		return "unknown"
	}
}

// Scope is a node in the scope tree, created on entry to a lexical
// block. Scopes are not removed on exit: the tree keeps every one.
type Scope struct {
	ID            ScopeID
	Parent        ScopeID // 0 (invalid) for the root
	HasParent     bool
	Kind          ScopeKind
	Name          string
	Symbols       map[string]ast.SymbolID
	Children      []ScopeID
	ActiveRegions []intern.Id
	Span          source.Span
}

// ScopeTree owns every Scope and Symbol created during resolution.
type ScopeTree struct {
	scopes       map[ScopeID]*Scope
	symbols      map[ast.SymbolID]*Symbol
	nextScope    ScopeID
	nextSymbol   ast.SymbolID
	rootScope    ScopeID
}

// NewScopeTree creates a tree containing only the root (global) scope.
func NewScopeTree() *ScopeTree {
	t := &ScopeTree{
		scopes:  make(map[ScopeID]*Scope),
		symbols: make(map[ast.SymbolID]*Symbol),
	}
	t.nextScope = 1
	t.nextSymbol = 1 // 0 is ast.NoSymbol
	root := &Scope{ID: t.nextScope, Kind: ScopeGlobal, Name: "<global>", Symbols: make(map[string]ast.SymbolID)}
	t.scopes[root.ID] = root
	t.rootScope = root.ID
	t.nextScope++
	return t
}

// Root returns the global scope's ID.
func (t *ScopeTree) Root() ScopeID { return t.rootScope }

// NewScope creates a child scope of parent and returns its ID.
func (t *ScopeTree) NewScope(parent ScopeID, kind ScopeKind, name string, span source.Span) ScopeID {
	id := t.nextScope
	t.nextScope++
	s := &Scope{ID: id, Parent: parent, HasParent: true, Kind: kind, Name: name, Symbols: make(map[string]ast.SymbolID), Span: span}
	t.scopes[id] = s
	if p, ok := t.scopes[parent]; ok {
		p.Children = append(p.Children, id)
	}
	return id
}

// Scope looks up a scope by ID.
func (t *ScopeTree) Scope(id ScopeID) *Scope { return t.scopes[id] }

// Symbol looks up a symbol by ID.
func (t *ScopeTree) Symbol(id ast.SymbolID) *Symbol { return t.symbols[id] }

// Declare inserts a new symbol named `name` into scope. Returns
// (id, true) on success, or (existingID, false) if name is already
// declared directly in this scope (DuplicateDefinition).
func (t *ScopeTree) Declare(scope ScopeID, name string, kind SymbolKind, vis Visibility, span source.Span) (ast.SymbolID, bool) {
	s := t.scopes[scope]
	if existing, ok := s.Symbols[name]; ok {
		return existing, false
	}

	id := t.nextSymbol
	t.nextSymbol++
	sym := &Symbol{ID: id, Name: name, Kind: kind, Visibility: vis, ScopeID: scope, Span: span, OwnershipState: ast.OwnershipOwned}
	t.symbols[id] = sym
	s.Symbols[name] = id

	return id, true
}

// Lookup walks the scope chain starting at scope, searching for name.
// Shadowing is permitted: the nearest enclosing declaration wins.
func (t *ScopeTree) Lookup(scope ScopeID, name string) (*Symbol, bool) {
	cur := scope
	for {
		s, ok := t.scopes[cur]
		if !ok {
			return nil, false
		}
		if id, ok := s.Symbols[name]; ok {
			return t.symbols[id], true
		}
		if !s.HasParent {
			return nil, false
		}
		cur = s.Parent
	}
}

// LookupLocal searches only the given scope, without walking parents.
func (t *ScopeTree) LookupLocal(scope ScopeID, name string) (*Symbol, bool) {
	s, ok := t.scopes[scope]
	if !ok {
		return nil, false
	}
	id, ok := s.Symbols[name]
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}
