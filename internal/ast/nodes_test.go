package ast

import "testing"

func TestConstructKindStrategy(t *testing.T) {
	cases := map[ConstructKind]MemoryStrategy{
		ConstructLinearNew:      StrategyLinear,
		ConstructSmartPtrNew:    StrategySmartPtr,
		ConstructRegionPtrNew:   StrategyRegion,
		ConstructManualPtrNew:   StrategyManual,
		ConstructManualPtrAlloc: StrategyManual,
	}
	for k, want := range cases {
		if got := k.Strategy(); got != want {
			t.Errorf("%v.Strategy() = %v, want %v", k, got, want)
		}
	}
}

func TestConstructKindString(t *testing.T) {
	cases := map[ConstructKind]string{
		ConstructLinearNew:      "LinearPtr::new",
		ConstructSmartPtrNew:    "SmartPtr::new",
		ConstructRegionPtrNew:   "RegionPtr::new",
		ConstructManualPtrNew:   "ManualPtr::new",
		ConstructManualPtrAlloc: "ManualPtr::alloc",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}

func TestBinaryExprImplementsExpr(t *testing.T) {
	var e Expr = &BinaryExpr{Op: OpAdd, Left: &IntLit{Value: 1}, Right: &IntLit{Value: 2}}
	if _, ok := e.(*BinaryExpr); !ok {
		t.Fatal("expected *BinaryExpr to satisfy the Expr interface")
	}
}

func TestIdentCarriesSymbol(t *testing.T) {
	id := &Ident{Name: 7, Symbol: 42}
	if id.Symbol != 42 {
		t.Errorf("Symbol = %v, want 42", id.Symbol)
	}
}
