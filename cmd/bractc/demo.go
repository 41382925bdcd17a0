package main

// Bract has no lexer or parser in this tree. demoModule builds that typed, resolved AST directly,
// the same way internal/bir's and internal/check's own tests construct
// fixtures, so this driver has something to run the pipeline over for
// manual smoke testing until a real front end exists.

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/resolver"
	"github.com/101shaan/Bract/internal/source"
)

// demoModule returns:
//
//	fn add(a: i32, b: i32) -> i32 { a + b }
//	fn pick(c: bool) -> i32 { if c { 1 } else { 2 } }
func demoModule(scopes *resolver.ScopeTree, interner *intern.Interner) []*ast.FunctionDecl {
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	boolT := ast.NewPrimitive(ast.PrimBool, ast.StrategyStack)

	addScope := scopes.NewScope(scopes.Root(), resolver.ScopeFunction, "add", source.Span{})
	aID, _ := scopes.Declare(addScope, "a", resolver.SymbolParam, resolver.VisibilityPrivate, source.Span{})
	bID, _ := scopes.Declare(addScope, "b", resolver.SymbolParam, resolver.VisibilityPrivate, source.Span{})
	scopes.Symbol(aID).DeclaredType = i32
	scopes.Symbol(bID).DeclaredType = i32

	aIdent := &ast.Ident{Name: interner.Intern("a"), Symbol: aID}
	bIdent := &ast.Ident{Name: interner.Intern("b"), Symbol: bID}

	addFn := &ast.FunctionDecl{
		Name: interner.Intern("add"),
		Params: []ast.Param{
			{Name: interner.Intern("a"), Symbol: aID, Type: i32},
			{Name: interner.Intern("b"), Symbol: bID, Type: i32},
		},
		RetType: i32,
		Body:    &ast.Block{Tail: &ast.BinaryExpr{Op: ast.OpAdd, Left: aIdent, Right: bIdent}},
	}

	pickScope := scopes.NewScope(scopes.Root(), resolver.ScopeFunction, "pick", source.Span{})
	cID, _ := scopes.Declare(pickScope, "c", resolver.SymbolParam, resolver.VisibilityPrivate, source.Span{})
	scopes.Symbol(cID).DeclaredType = boolT
	cIdent := &ast.Ident{Name: interner.Intern("c"), Symbol: cID}

	pickFn := &ast.FunctionDecl{
		Name:    interner.Intern("pick"),
		Params:  []ast.Param{{Name: interner.Intern("c"), Symbol: cID, Type: boolT}},
		RetType: i32,
		Body: &ast.Block{Tail: &ast.IfExpr{
			Cond: cIdent,
			Then: &ast.Block{Tail: &ast.IntLit{Value: 1}},
			Else: &ast.Block{Tail: &ast.IntLit{Value: 2}},
		}},
	}

	return []*ast.FunctionDecl{addFn, pickFn}
}
