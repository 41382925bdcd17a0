package check

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/resolver"
	"github.com/101shaan/Bract/internal/source"
)

func newChecker(t *testing.T) (*Checker, *diagnostic.WorkerBuffer) {
	t.Helper()
	scopes := resolver.NewScopeTree()
	interner := intern.New()
	buf := diagnostic.NewSink().Worker("test")
	return New(scopes, interner, buf), buf
}

func TestCheckFunctionInfersAdditionReturnType(t *testing.T) {
	scopes := resolver.NewScopeTree()
	interner := intern.New()
	buf := diagnostic.NewSink().Worker("test")
	c := New(scopes, interner, buf)

	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	fnScope := scopes.NewScope(scopes.Root(), resolver.ScopeFunction, "f", source.Span{})
	aID, _ := scopes.Declare(fnScope, "a", resolver.SymbolParam, resolver.VisibilityPrivate, source.Span{})
	bID, _ := scopes.Declare(fnScope, "b", resolver.SymbolParam, resolver.VisibilityPrivate, source.Span{})
	scopes.Symbol(aID).DeclaredType = i32
	scopes.Symbol(bID).DeclaredType = i32

	fn := &ast.FunctionDecl{
		Name: interner.Intern("f"),
		Params: []ast.Param{
			{Name: interner.Intern("a"), Symbol: aID, Type: i32},
			{Name: interner.Intern("b"), Symbol: bID, Type: i32},
		},
		RetType: i32,
		Body: &ast.Block{Tail: &ast.BinaryExpr{
			Op:    ast.OpAdd,
			Left:  &ast.Ident{Name: interner.Intern("a"), Symbol: aID},
			Right: &ast.Ident{Name: interner.Intern("b"), Symbol: bID},
		}},
	}

	ty, err := c.CheckFunction(fn)
	if err != nil {
		t.Fatalf("CheckFunction returned error: %v", err)
	}
	if ty.Ret.Kind != ast.TypePrimitive || ty.Ret.Prim != ast.PrimI32 {
		t.Fatalf("Ret = %v, want i32", ty.Ret)
	}
}

func TestCheckFunctionRejectsMismatchedReturn(t *testing.T) {
	scopes := resolver.NewScopeTree()
	interner := intern.New()
	buf := diagnostic.NewSink().Worker("test")
	c := New(scopes, interner, buf)

	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	fn := &ast.FunctionDecl{
		Name:    interner.Intern("f"),
		RetType: i32,
		Body:    &ast.Block{Tail: &ast.BoolLit{Value: true}},
	}

	if _, err := c.CheckFunction(fn); err == nil {
		t.Fatal("expected a type mismatch between declared i32 return and a bool tail expression")
	}
	if !buf.HasErrors() {
		t.Fatal("expected a diagnostic to have been reported for the mismatch")
	}
}

func TestCheckFunctionDefaultsUnitReturn(t *testing.T) {
	c, _ := newChecker(t)
	fn := &ast.FunctionDecl{Name: c.interner.Intern("f"), Body: &ast.Block{}}

	ty, err := c.CheckFunction(fn)
	if err != nil {
		t.Fatalf("CheckFunction returned error: %v", err)
	}
	if ty.Ret.Prim != ast.PrimUnit {
		t.Fatalf("Ret = %v, want unit for a function with no tail expression", ty.Ret)
	}
}
