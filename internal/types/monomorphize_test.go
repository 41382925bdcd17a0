package types

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
)

func TestMonomorphKeyDistinguishesStrategy(t *testing.T) {
	stackArg := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	smartArg := ast.NewPrimitive(ast.PrimI32, ast.StrategySmartPtr)

	keyStack := NewMonomorphKey(1, []*ast.Type{stackArg})
	keySmart := NewMonomorphKey(1, []*ast.Type{smartArg})

	if keyStack == keySmart {
		t.Fatal("expected distinct strategies on the same shape to produce distinct MonomorphKeys")
	}
}

func TestMonomorphKeyIsStableAndDeterministic(t *testing.T) {
	arg := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	k1 := NewMonomorphKey(7, []*ast.Type{arg})
	k2 := NewMonomorphKey(7, []*ast.Type{arg})
	if k1 != k2 {
		t.Fatalf("NewMonomorphKey is non-deterministic: %q vs %q", k1, k2)
	}
}

func TestMonomorphKeyDistinguishesFunctionSymbol(t *testing.T) {
	arg := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	k1 := NewMonomorphKey(1, []*ast.Type{arg})
	k2 := NewMonomorphKey(2, []*ast.Type{arg})
	if k1 == k2 {
		t.Fatal("expected distinct function symbols to produce distinct MonomorphKeys")
	}
}

func TestMonomorphKeyRegionQualifiesStructKey(t *testing.T) {
	structA := &ast.Type{Kind: ast.TypeStruct, Strategy: ast.StrategyRegion, DeclID: 9, RegionID: 1}
	structB := &ast.Type{Kind: ast.TypeStruct, Strategy: ast.StrategyRegion, DeclID: 9, RegionID: 2}

	k1 := NewMonomorphKey(1, []*ast.Type{structA})
	k2 := NewMonomorphKey(1, []*ast.Type{structB})
	if k1 == k2 {
		t.Fatal("expected distinct region IDs on an otherwise identical struct type to produce distinct keys")
	}
}

func TestRegionKeyOf(t *testing.T) {
	ty := &ast.Type{Kind: ast.TypeStruct, Strategy: ast.StrategyRegion, RegionID: 42}
	if got := RegionKeyOf(ty); got != 42 {
		t.Errorf("RegionKeyOf = %v, want 42", got)
	}
}
