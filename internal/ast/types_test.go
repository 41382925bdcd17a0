package ast

import "testing"

func TestTypeStringPrimitive(t *testing.T) {
	ty := NewPrimitive(PrimI32, StrategyStack)
	if got, want := ty.String(), "i32[Stack]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTypeStringReference(t *testing.T) {
	target := NewPrimitive(PrimI32, StrategyStack)
	ref := &Type{Kind: TypeReference, Target: target, Mutable: true}
	if got, want := ref.String(), "&mut i32[Stack]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	shared := &Type{Kind: TypeReference, Target: target}
	if got, want := shared.String(), "&i32[Stack]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTypeStringNilIsSafe(t *testing.T) {
	var ty *Type
	if got, want := ty.String(), "<nil type>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsNonCopyableOwnStrategy(t *testing.T) {
	linear := NewPrimitive(PrimI32, StrategyLinear)
	if !linear.IsNonCopyable() {
		t.Error("expected a Linear-strategy primitive to be non-copyable")
	}
	stack := NewPrimitive(PrimI32, StrategyStack)
	if stack.IsNonCopyable() {
		t.Error("expected a Stack-strategy primitive to be copyable")
	}
}

func TestIsNonCopyablePropagatesThroughTuple(t *testing.T) {
	linearField := NewPrimitive(PrimI32, StrategyLinear)
	stackField := NewPrimitive(PrimI32, StrategyStack)
	tuple := &Type{Kind: TypeTuple, Strategy: StrategyStack, Fields: []*Type{stackField, linearField}}
	if !tuple.IsNonCopyable() {
		t.Error("expected a tuple containing a Linear field to be non-copyable even though the tuple's own strategy is Stack")
	}
}

func TestIsNonCopyableNilTypeIsFalse(t *testing.T) {
	var ty *Type
	if ty.IsNonCopyable() {
		t.Error("expected a nil Type to report copyable (false)")
	}
}

func TestPerformanceContractIsEmpty(t *testing.T) {
	if !(*PerformanceContract)(nil).IsEmpty() {
		t.Error("expected a nil PerformanceContract to be empty")
	}
	if !(&PerformanceContract{}).IsEmpty() {
		t.Error("expected a zero-value PerformanceContract to be empty")
	}

	bound := uint64(100)
	constrained := &PerformanceContract{MaxCost: &bound}
	if constrained.IsEmpty() {
		t.Error("expected a contract with MaxCost set to be non-empty")
	}

	waitFree := &PerformanceContract{WaitFree: true}
	if waitFree.IsEmpty() {
		t.Error("expected a contract with WaitFree set to be non-empty")
	}
}

func TestPrimitiveClassification(t *testing.T) {
	if !PrimI32.IsNumeric() || !PrimI32.IsInteger() {
		t.Error("expected i32 to be numeric and integer")
	}
	if !PrimF64.IsNumeric() || PrimF64.IsInteger() {
		t.Error("expected f64 to be numeric but not integer")
	}
	if PrimBool.IsNumeric() {
		t.Error("expected bool to not be numeric")
	}
}
