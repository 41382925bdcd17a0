package contract

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
)

// ErrUnboundedRecursion is returned by Estimate when a recursive call has
// no static bound and the function declares a max_cost.
type ErrUnboundedRecursion struct{ Function string }

func (e *ErrUnboundedRecursion) Error() string {
	return fmt.Sprintf("unbounded recursion in %q with a declared max_cost", e.Function)
}

// Estimator walks one function's BIR and produces its worst-case Cost
// vector, given a lookup from callee name to its own already-estimated
// Cost (for the "10 + callee cost" Call rule and recursive fixpoint).
type Estimator struct {
	profile   TargetProfile
	callCosts map[string]Cost
	// visiting tracks functions currently on the estimation stack, to
	// detect recursion for the fixpoint/UnboundedRecursion rule.
	visiting map[string]bool
}

// NewEstimator creates a cost estimator against profile, with callCosts
// pre-seeded for every already-estimated callee.
func NewEstimator(profile TargetProfile, callCosts map[string]Cost) *Estimator {
	if callCosts == nil {
		callCosts = make(map[string]Cost)
	}
	return &Estimator{profile: profile, callCosts: callCosts, visiting: make(map[string]bool)}
}

// Estimate computes fn's worst-case cost vector.
func (e *Estimator) Estimate(fn *bir.Function) (Cost, error) {
	if e.visiting[fn.Name] {
		// Recursive cycle with no resolved cost yet. A function that
		// declares max_cost fails with UnboundedRecursion; one without a
		// max_cost gets the zero cost for the recursive call.
		if fn.Contract != nil && fn.Contract.MaxCost != nil {
			return Cost{}, &ErrUnboundedRecursion{Function: fn.Name}
		}
		return Cost{}, nil
	}
	e.visiting[fn.Name] = true
	defer delete(e.visiting, fn.Name)

	if len(fn.Blocks) == 0 {
		return Cost{}, nil
	}
	byLabel := make(map[string]*bir.BasicBlock, len(fn.Blocks))
	for _, blk := range fn.Blocks {
		byLabel[blk.Label] = blk
	}

	total, err := e.pathCost(fn.Blocks[0], byLabel, make(map[string]bool))
	if err != nil {
		return Cost{}, err
	}

	for _, p := range fn.Params {
		total.Stack += stackSlotSize(p.Strategy)
	}

	e.callCosts[fn.Name] = total
	return total, nil
}

// pathCost walks the CFG from blk to every reachable exit, summing
// straight-line cost, taking the worst arm at a CondBranch, and multiplying a loop
// body's cost by its LoopBound. visiting guards against an unbounded-loop back-edge cycle.
func (e *Estimator) pathCost(blk *bir.BasicBlock, byLabel map[string]*bir.BasicBlock, visiting map[string]bool) (Cost, error) {
	if visiting[blk.Label] {
		return Cost{}, nil
	}
	visiting[blk.Label] = true
	defer delete(visiting, blk.Label)

	here, err := e.blockCost(blk)
	if err != nil {
		return Cost{}, err
	}
	if blk.LoopBound != nil {
		here.Cycles *= *blk.LoopBound
		here.Allocations *= *blk.LoopBound
		here.Memory *= *blk.LoopBound
	}

	switch t := blk.Term.(type) {
	case bir.Return, bir.Unreachable:
		return here, nil

	case bir.Branch:
		next, ok := byLabel[t.Target]
		if !ok {
			return here, nil
		}
		rest, err := e.pathCost(next, byLabel, visiting)
		if err != nil {
			return Cost{}, err
		}
		return addWorstPath(here, rest), nil

	case bir.CondBranch:
		var trueCost, falseCost Cost
		if next, ok := byLabel[t.True]; ok {
			trueCost, err = e.pathCost(next, byLabel, visiting)
			if err != nil {
				return Cost{}, err
			}
		}
		if next, ok := byLabel[t.False]; ok {
			falseCost, err = e.pathCost(next, byLabel, visiting)
			if err != nil {
				return Cost{}, err
			}
		}
		return addWorstPath(here, worstOf(trueCost, falseCost)), nil
	}
	return here, nil
}

// worstOf picks the costlier-by-cycles branch.
func worstOf(a, b Cost) Cost {
	if b.Cycles > a.Cycles {
		return b
	}
	return a
}

func (e *Estimator) blockCost(blk *bir.BasicBlock) (Cost, error) {
	var c Cost
	for _, in := range blk.Instr {
		ic, err := e.instrCost(in)
		if err != nil {
			return Cost{}, err
		}
		c.Cycles += ic.Cycles
		c.Memory += ic.Memory
		c.Allocations += ic.Allocations
		c.Stack += ic.Stack
	}
	return c, nil
}

func (e *Estimator) instrCost(in bir.Instr) (Cost, error) {
	switch v := in.(type) {
	case bir.BinOp:
		op := OpArithmetic
		switch v.Op {
		case ast.OpMul:
			op = OpMul
		case ast.OpDiv, ast.OpMod:
			op = OpDivMod
		}
		return Cost{Cycles: e.profile.OpCost(op)}, nil

	case bir.Load:
		return Cost{Cycles: e.profile.OpCost(OpLoadStoreHit)}, nil
	case bir.Store:
		return Cost{Cycles: e.profile.OpCost(OpLoadStoreHit)}, nil

	case bir.Call:
		calleeCost := v.Contract
		base := e.profile.OpCost(OpCallBase)
		if known, ok := e.callCosts[v.Callee]; ok {
			return Cost{Cycles: base + known.Cycles, Memory: known.Memory, Allocations: known.Allocations}, nil
		}
		if calleeCost != nil && calleeCost.MaxCost != nil {
			return Cost{Cycles: base + *calleeCost.MaxCost}, nil
		}
		return Cost{Cycles: base}, nil

	case bir.Allocate:
		op := strategyAllocOp(v.Strategy)
		cycles := e.profile.OpCost(op)
		if v.Strategy == ast.StrategySmartPtr {
			cycles += e.profile.OpCost(OpArcRefcount)
		}
		allocs := uint64(0)
		if v.Strategy != ast.StrategyStack {
			allocs = 1
		}
		mem := v.Size
		stack := uint64(0)
		if v.Strategy == ast.StrategyStack {
			stack = v.Size
		}
		return Cost{Cycles: cycles, Memory: mem, Allocations: allocs, Stack: stack}, nil

	case bir.Move:
		return Cost{Cycles: e.profile.OpCost(OpMoveNonCopy)}, nil

	case bir.ArcIncref, bir.ArcDecref:
		return Cost{Cycles: e.profile.OpCost(OpArcRefcount)}, nil

	case bir.BoundsCheck:
		return Cost{Cycles: e.profile.OpCost(OpBoundsCheck) + e.profile.OpCost(OpBranch)}, nil

	case bir.Free:
		return Cost{Cycles: e.profile.OpCost(OpAllocateManual) / 2}, nil

	case bir.RegionEnter, bir.RegionExit:
		return Cost{Cycles: e.profile.OpCost(OpAllocateRegion)}, nil

	case bir.ProfilerHook:
		return Cost{}, nil

	default:
		return Cost{}, nil
	}
}

func stackSlotSize(s ast.MemoryStrategy) uint64 {
	if s == ast.StrategyStack {
		return 8
	}
	return 0
}

// addWorstPath sums a block's own cost with whichever continuation cost
// pathCost already selected (a single successor for Branch, the worse of
// two for CondBranch).
func addWorstPath(a, b Cost) Cost {
	return Cost{
		Cycles:      a.Cycles + b.Cycles,
		Memory:      a.Memory + b.Memory,
		Allocations: a.Allocations + b.Allocations,
		Stack:       a.Stack + b.Stack,
	}
}
