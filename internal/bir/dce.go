package bir

import "github.com/101shaan/Bract/internal/ast"

// EliminateDeadCode removes instructions whose result is never read and
// whose strategy has no observable side effect, : "a pure
// Allocate{Stack} whose value is unused is removed; a SmartPtr allocation
// is not removed even if unused because its refcount side effects must be
// preserved". Runs once per function after the builder produces it.
func EliminateDeadCode(fn *Function) {
	used := usedRefs(fn)

	for _, blk := range fn.Blocks {
		kept := blk.Instr[:0]
		for _, in := range blk.Instr {
			if isDeadPure(in, used) {
				continue
			}
			kept = append(kept, in)
		}
		blk.Instr = kept
	}
}

// isDeadPure reports whether in can be dropped: it has a named destination
// that nothing reads, and removing it has no effect beyond freeing the
// unused value.
func isDeadPure(in Instr, used map[string]bool) bool {
	dst, strategy, hasDst := dstOf(in)
	if !hasDst || used[dst] {
		return false
	}

	switch strategy {
	case ast.StrategyStack:
		// Safe: a dead stack slot has no lifecycle beyond its own storage.
		switch in.(type) {
		case BinOp, Allocate, Load:
			return true
		}
		return false
	default:
		// Linear/Region/Manual/SmartPtr allocations all carry side effects
		// (refcounting, must-free obligation, region accounting) that must
		// survive even when the resulting value is never read.
		return false
	}
}

func dstOf(in Instr) (name string, strategy ast.MemoryStrategy, ok bool) {
	switch v := in.(type) {
	case BinOp:
		return v.Dst, ast.StrategyStack, v.Dst != ""
	case Allocate:
		return v.Dst, v.Strategy, v.Dst != ""
	case Load:
		return v.Dst, ast.StrategyStack, v.Dst != ""
	case Move:
		return v.Dst, ast.StrategyStack, v.Dst != ""
	case Call:
		// A call's destination is never eliminated: even an unused result
		// may come from a function with external effects.
		return "", ast.StrategyStack, false
	}
	return "", ast.StrategyStack, false
}

// usedRefs collects every SSA name read anywhere in the function: by an
// instruction operand, a terminator operand/argument, or a block argument
// consumer.
func usedRefs(fn *Function) map[string]bool {
	used := make(map[string]bool)
	mark := func(v Value) {
		if v.Kind == ValRef {
			used[v.Ref] = true
		}
	}

	for _, blk := range fn.Blocks {
		for _, in := range blk.Instr {
			switch v := in.(type) {
			case BinOp:
				mark(v.LHS)
				mark(v.RHS)
			case Call:
				for _, a := range v.Args {
					mark(a)
				}
			case Load:
				mark(v.Addr)
			case Store:
				mark(v.Addr)
				mark(v.Val)
			case Move:
				used[v.Source] = true
			case ArcIncref:
				mark(v.Target)
			case ArcDecref:
				mark(v.Target)
			case Free:
				mark(v.Target)
			case BoundsCheck:
				mark(v.Base)
				mark(v.Index)
				mark(v.Len)
			}
		}
		switch t := blk.Term.(type) {
		case Return:
			if t.Val != nil {
				mark(*t.Val)
			}
		case Branch:
			for _, a := range t.Args {
				mark(a)
			}
		case CondBranch:
			mark(t.Cond)
			for _, a := range t.TrueArgs {
				mark(a)
			}
			for _, a := range t.FalseArgs {
				mark(a)
			}
		}
	}
	return used
}
