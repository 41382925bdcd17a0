package types

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
)

func TestUnifyIdenticalPrimitivesSucceeds(t *testing.T) {
	u := NewUnifier(nil)
	a := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	b := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	if err := u.Unify(a, b); err != nil {
		t.Fatalf("Unify(i32[Stack], i32[Stack]) = %v, want nil", err)
	}
}

func TestUnifyMismatchedPrimitivesFails(t *testing.T) {
	u := NewUnifier(nil)
	a := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	b := ast.NewPrimitive(ast.PrimBool, ast.StrategyStack)
	err := u.Unify(a, b)
	if err == nil {
		t.Fatal("expected unifying i32 with bool to fail")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Kind != ErrTypeMismatch {
		t.Fatalf("err = %v, want ErrTypeMismatch", err)
	}
}

func TestUnifyBindsFreeVariable(t *testing.T) {
	u := NewUnifier(nil)
	v := u.Fresh()
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)

	if err := u.Unify(v, i32); err != nil {
		t.Fatalf("Unify(var, i32) = %v, want nil", err)
	}
	resolved := u.Resolve(v)
	if resolved.Kind != ast.TypePrimitive || resolved.Prim != ast.PrimI32 {
		t.Fatalf("Resolve(var) = %v, want i32", resolved)
	}
}

func TestUnifyOccursCheckFailsOnSelfReferentialBinding(t *testing.T) {
	u := NewUnifier(nil)
	v := u.Fresh()
	wrapper := &ast.Type{Kind: ast.TypeSlice, Strategy: ast.StrategyStack, Elem: v}

	err := u.Unify(v, wrapper)
	if err == nil {
		t.Fatal("expected binding a variable to a type containing itself to fail the occurs check")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Kind != ErrOccursCheckFailure {
		t.Fatalf("err = %v, want ErrOccursCheckFailure", err)
	}
}

func TestUnifyStrategyInferredAdoptsOtherSide(t *testing.T) {
	u := NewUnifier(nil)
	a := ast.NewPrimitive(ast.PrimI32, ast.StrategyInferred)
	b := ast.NewPrimitive(ast.PrimI32, ast.StrategyLinear)

	if err := u.Unify(a, b); err != nil {
		t.Fatalf("Unify = %v, want nil", err)
	}
	if a.Strategy != ast.StrategyLinear {
		t.Fatalf("a.Strategy = %v, want it to adopt Linear from b", a.Strategy)
	}
}

func TestUnifyIncompatibleStrategiesFails(t *testing.T) {
	u := NewUnifier(nil)
	a := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	b := ast.NewPrimitive(ast.PrimI32, ast.StrategyRegion)

	err := u.Unify(a, b)
	if err == nil {
		t.Fatal("expected unifying Stack with Region to fail as a region escape")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Kind != ErrRegionEscape {
		t.Fatalf("err = %v, want ErrRegionEscape", err)
	}
}

func TestFinalizeDefaultsInferredToStack(t *testing.T) {
	u := NewUnifier(nil)
	ty := ast.NewPrimitive(ast.PrimI32, ast.StrategyInferred)

	resolved, err := u.Finalize(ty)
	if err != nil {
		t.Fatalf("Finalize = %v, want nil error", err)
	}
	if resolved.Strategy != ast.StrategyStack {
		t.Fatalf("Strategy = %v, want StrategyStack as the default", resolved.Strategy)
	}
}

func TestFinalizeUnboundVariableErrors(t *testing.T) {
	u := NewUnifier(nil)
	v := u.Fresh()

	_, err := u.Finalize(v)
	if err == nil {
		t.Fatal("expected Finalize of an unbound variable to fail")
	}
	if uerr, ok := err.(*Error); !ok || uerr.Kind != ErrUnresolvableInference {
		t.Fatalf("err = %v, want ErrUnresolvableInference", err)
	}
}

func TestUnifyRecursesIntoTuple(t *testing.T) {
	u := NewUnifier(nil)
	i32 := ast.NewPrimitive(ast.PrimI32, ast.StrategyStack)
	boolT := ast.NewPrimitive(ast.PrimBool, ast.StrategyStack)

	a := &ast.Type{Kind: ast.TypeTuple, Strategy: ast.StrategyStack, Fields: []*ast.Type{i32, boolT}}
	b := &ast.Type{Kind: ast.TypeTuple, Strategy: ast.StrategyStack, Fields: []*ast.Type{
		ast.NewPrimitive(ast.PrimI32, ast.StrategyStack),
		ast.NewPrimitive(ast.PrimBool, ast.StrategyStack),
	}}

	if err := u.Unify(a, b); err != nil {
		t.Fatalf("Unify(tuples) = %v, want nil", err)
	}
}
