package contract

import (
	"testing"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
)

func singleAddBlockFunction() *bir.Function {
	return &bir.Function{
		Name: "add_one",
		Blocks: []*bir.BasicBlock{
			{
				Label: "entry",
				Instr: []bir.Instr{
					bir.BinOp{Dst: "%t1", Op: ast.OpAdd, LHS: bir.IntValue(1), RHS: bir.IntValue(1)},
				},
				Term: bir.Return{Val: func() *bir.Value { v := bir.RefValue("%t1"); return &v }()},
			},
		},
	}
}

func TestEstimateDefaultProfileStraightLine(t *testing.T) {
	est := NewEstimator(DefaultProfile(), nil)
	cost, err := est.Estimate(singleAddBlockFunction())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if cost.Cycles != 1 {
		t.Fatalf("Cycles = %d, want 1 (the base arithmetic cost)", cost.Cycles)
	}
}

func TestEstimateTakesWorstArm(t *testing.T) {
	join := &bir.BasicBlock{Label: "join", Term: bir.Return{}}
	cheap := &bir.BasicBlock{
		Label: "cheap",
		Instr: []bir.Instr{bir.BinOp{Dst: "%c", Op: ast.OpAdd, LHS: bir.IntValue(1), RHS: bir.IntValue(1)}},
		Term:  bir.Branch{Target: "join"},
	}
	costly := &bir.BasicBlock{
		Label: "costly",
		Instr: []bir.Instr{bir.BinOp{Dst: "%e", Op: ast.OpMul, LHS: bir.IntValue(1), RHS: bir.IntValue(1)}},
		Term:  bir.Branch{Target: "join"},
	}
	entry := &bir.BasicBlock{
		Label: "entry",
		Term:  bir.CondBranch{Cond: bir.BoolValue(true), True: "cheap", False: "costly"},
	}

	fn := &bir.Function{Name: "branchy", Blocks: []*bir.BasicBlock{entry, cheap, costly, join}}
	cost, err := NewEstimator(DefaultProfile(), nil).Estimate(fn)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if cost.Cycles != 3 {
		t.Fatalf("Cycles = %d, want 3 (the costly Mul arm, not the cheap Add arm)", cost.Cycles)
	}
}

func TestEstimateMultipliesLoopBody(t *testing.T) {
	bound := uint64(4)
	join := &bir.BasicBlock{Label: "join", Term: bir.Return{}}
	body := &bir.BasicBlock{
		Label:     "body",
		Instr:     []bir.Instr{bir.BinOp{Dst: "%x", Op: ast.OpAdd, LHS: bir.IntValue(1), RHS: bir.IntValue(1)}},
		Term:      bir.Branch{Target: "join"},
		LoopBound: &bound,
	}
	entry := &bir.BasicBlock{Label: "entry", Term: bir.Branch{Target: "body"}}

	fn := &bir.Function{Name: "looped", Blocks: []*bir.BasicBlock{entry, body, join}}
	cost, err := NewEstimator(DefaultProfile(), nil).Estimate(fn)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if cost.Cycles != 4 {
		t.Fatalf("Cycles = %d, want 4 (one Add per iteration, bound 4)", cost.Cycles)
	}
}
