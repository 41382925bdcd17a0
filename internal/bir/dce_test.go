package bir

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
)

func TestEliminateDeadCodeDropsUnusedStackAllocation(t *testing.T) {
	fn := &Function{
		Name: "dead_slot",
		Blocks: []*BasicBlock{
			{
				Label: "entry",
				Instr: []Instr{
					Allocate{Dst: "%slot", Strategy: ast.StrategyStack, Size: 8},
				},
				Term: Return{},
			},
		},
	}

	EliminateDeadCode(fn)
	if len(fn.Blocks[0].Instr) != 0 {
		t.Fatalf("expected the unused stack Allocate to be removed, got %+v", fn.Blocks[0].Instr)
	}
}

func TestEliminateDeadCodeKeepsUnusedSmartPtrAllocation(t *testing.T) {
	fn := &Function{
		Name: "side_effecting",
		Blocks: []*BasicBlock{
			{
				Label: "entry",
				Instr: []Instr{
					Allocate{Dst: "%p", Strategy: ast.StrategySmartPtr, Size: 16},
				},
				Term: Return{},
			},
		},
	}

	EliminateDeadCode(fn)
	if len(fn.Blocks[0].Instr) != 1 {
		t.Fatalf("expected the unused SmartPtr Allocate to survive DCE (refcount side effect), got %+v", fn.Blocks[0].Instr)
	}
}

func TestEliminateDeadCodeKeepsUsedValue(t *testing.T) {
	fn := &Function{
		Name: "used",
		Blocks: []*BasicBlock{
			{
				Label: "entry",
				Instr: []Instr{
					BinOp{Dst: "%t1", Op: ast.OpAdd, LHS: IntValue(1), RHS: IntValue(1)},
				},
				Term: Return{Val: func() *Value { v := RefValue("%t1"); return &v }()},
			},
		},
	}

	EliminateDeadCode(fn)
	if len(fn.Blocks[0].Instr) != 1 {
		t.Fatalf("expected the used BinOp to survive DCE, got %+v", fn.Blocks[0].Instr)
	}
}
