package resolver

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
)

func TestResolveBindsIdentToParamSymbol(t *testing.T) {
	interner := intern.New()
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)

	aIdent := &ast.Ident{Name: interner.Intern("a")}
	fn := &ast.FunctionDecl{
		Name:    interner.Intern("identity"),
		Params:  []ast.Param{{Name: interner.Intern("a"), Type: i32}},
		RetType: i32,
		Body:    &ast.Block{Tail: aIdent},
	}
	mod := &ast.Module{Name: interner.Intern("m"), Items: []ast.Item{fn}}

	res := New(interner).Resolve(mod)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected resolution errors: %v", res.Errors)
	}
	if aIdent.Symbol == ast.NoSymbol {
		t.Fatal("expected the ident 'a' to resolve to the parameter's symbol")
	}
	if fn.Params[0].Symbol != aIdent.Symbol {
		t.Error("expected the bound ident's symbol to match the parameter's own symbol")
	}
}

func TestResolveReportsUnresolvedName(t *testing.T) {
	interner := intern.New()
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)

	missing := &ast.Ident{Name: interner.Intern("nope")}
	fn := &ast.FunctionDecl{
		Name:    interner.Intern("f"),
		RetType: i32,
		Body:    &ast.Block{Tail: missing},
	}
	mod := &ast.Module{Name: interner.Intern("m"), Items: []ast.Item{fn}}

	res := New(interner).Resolve(mod)
	if len(res.Errors) != 1 || res.Errors[0].Kind != ErrUnresolvedName {
		t.Fatalf("Errors = %v, want exactly one ErrUnresolvedName", res.Errors)
	}
}

func TestResolveReportsDuplicateFunctionDefinition(t *testing.T) {
	interner := intern.New()
	name := interner.Intern("dup")
	fn1 := &ast.FunctionDecl{Name: name, Body: &ast.Block{}}
	fn2 := &ast.FunctionDecl{Name: name, Body: &ast.Block{}}
	mod := &ast.Module{Name: interner.Intern("m"), Items: []ast.Item{fn1, fn2}}

	res := New(interner).Resolve(mod)
	if len(res.Errors) != 1 || res.Errors[0].Kind != ErrDuplicateDefinition {
		t.Fatalf("Errors = %v, want exactly one ErrDuplicateDefinition", res.Errors)
	}
}

func TestResolveAllowsShadowingInNestedLet(t *testing.T) {
	interner := intern.New()
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	xName := interner.Intern("x")

	innerIdent := &ast.Ident{Name: xName}
	letX := &ast.LetStmt{Name: xName, Init: &ast.IntLit{Value: 1}}
	fn := &ast.FunctionDecl{
		Name:    interner.Intern("f"),
		Params:  []ast.Param{{Name: xName, Type: i32}},
		RetType: i32,
		Body: &ast.Block{
			Stmts: []ast.Stmt{letX},
			Tail:  innerIdent,
		},
	}
	mod := &ast.Module{Name: interner.Intern("m"), Items: []ast.Item{fn}}

	res := New(interner).Resolve(mod)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if innerIdent.Symbol == ast.NoSymbol {
		t.Fatal("expected the tail ident to resolve against the let-bound x")
	}
	if innerIdent.Symbol != letX.Symbol || innerIdent.Symbol == fn.Params[0].Symbol {
		t.Error("expected the tail ident to bind to the let's symbol, not the shadowed parameter's")
	}
}

func TestErrorKindCode(t *testing.T) {
	cases := map[ErrorKind]string{
		ErrDuplicateDefinition: "E_DUPLICATE_DEFINITION",
		ErrUnresolvedName:      "E_UNRESOLVED_NAME",
		ErrVisibilityViolation: "E_VISIBILITY_VIOLATION",
	}
	for k, want := range cases {
		if got := k.Code(); got != want {
			t.Errorf("%v.Code() = %q, want %q", k, got, want)
		}
	}
}
