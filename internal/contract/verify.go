package contract

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
)

// SuggestionKind is the closed vocabulary of optimization suggestions
// anticipates ("switch Linear to Stack", "hoist allocation
// out of loop", "replace SmartPtr with Linear"), following
// ViolationType enum rather
// than free text.
type SuggestionKind int

const (
	SuggestSwitchStrategy SuggestionKind = iota
	SuggestHoistAllocation
	SuggestSplitFunction
	SuggestRelaxBound
)

// Suggestion is one closed-vocabulary optimization hint attached to a
// ContractViolation.
type Suggestion struct {
	Kind SuggestionKind
	From ast.MemoryStrategy // set for SuggestSwitchStrategy
	To   ast.MemoryStrategy // set for SuggestSwitchStrategy
	Note string
}

func (s Suggestion) String() string {
	switch s.Kind {
	case SuggestSwitchStrategy:
		return fmt.Sprintf("switch %s to %s", s.From, s.To)
	case SuggestHoistAllocation:
		return "hoist allocation out of loop"
	case SuggestSplitFunction:
		return "split function to shrink the worst path"
	case SuggestRelaxBound:
		return "relax the declared contract bound"
	default:
		return "optimize"
	}
}

// Field identifies which contract dimension a ContractViolation reports.
type Field int

const (
	FieldMaxCost Field = iota
	FieldMaxMemory
	FieldMaxAllocations
	FieldMaxStack
	FieldLatencyBound
	FieldWaitFree
	FieldDeterministic
	FieldRequiredStrategy
)

func (f Field) String() string {
	switch f {
	case FieldMaxCost:
		return "max_cost"
	case FieldMaxMemory:
		return "max_memory"
	case FieldMaxAllocations:
		return "max_allocations"
	case FieldMaxStack:
		return "max_stack"
	case FieldLatencyBound:
		return "latency_bound"
	case FieldWaitFree:
		return "wait_free"
	case FieldDeterministic:
		return "deterministic"
	case FieldRequiredStrategy:
		return "required_strategy"
	default:
		return "unknown"
	}
}

// ContractViolation reports one declared-field breach.
type ContractViolation struct {
	Function    string
	Field       Field
	Computed    uint64
	Declared    uint64
	Suggestions []Suggestion
}

func (v ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s computed %d exceeds declared %d", v.Function, v.Field, v.Computed, v.Declared)
}

// Verify checks fn's computed cost against its declared contract: for each
// declared field, asserts computed <= declared. Also enforces the
// wait_free flag, which fails if the function's BIR contains any
// Allocate{Manual} or blocking call.
func Verify(fnName string, fn *bir.Function, computed Cost) []ContractViolation {
	c := fn.Contract
	if c == nil || c.IsEmpty() {
		return nil
	}

	var violations []ContractViolation
	check := func(field Field, declared *uint64, value uint64, suggestions ...Suggestion) {
		if declared != nil && value > *declared {
			violations = append(violations, ContractViolation{
				Function: fnName, Field: field, Computed: value, Declared: *declared, Suggestions: suggestions,
			})
		}
	}

	check(FieldMaxCost, c.MaxCost, computed.Cycles,
		Suggestion{Kind: SuggestHoistAllocation}, Suggestion{Kind: SuggestSplitFunction})
	check(FieldMaxMemory, c.MaxMemory, computed.Memory,
		Suggestion{Kind: SuggestSwitchStrategy, From: ast.StrategySmartPtr, To: ast.StrategyLinear})
	check(FieldMaxAllocations, c.MaxAllocations, computed.Allocations,
		Suggestion{Kind: SuggestSwitchStrategy, From: ast.StrategyLinear, To: ast.StrategyStack})
	check(FieldMaxStack, c.MaxStack, computed.Stack, Suggestion{Kind: SuggestSplitFunction})
	check(FieldLatencyBound, c.LatencyBound, computed.Cycles, Suggestion{Kind: SuggestRelaxBound})

	if c.WaitFree {
		if reason, blocks := violatesWaitFree(fn); blocks {
			violations = append(violations, ContractViolation{
				Function: fnName,
				Field:    FieldWaitFree,
				Computed: 1,
				Declared: 0,
				Suggestions: []Suggestion{
					{Kind: SuggestSwitchStrategy, From: ast.StrategyManual, To: ast.StrategyStack, Note: reason},
				},
			})
		}
	}

	if c.RequiredStrategy != nil {
		if bad, ok := violatesRequiredStrategy(fn, *c.RequiredStrategy); ok {
			violations = append(violations, ContractViolation{
				Function: fnName,
				Field:    FieldRequiredStrategy,
				Computed: 1,
				Declared: 0,
				Suggestions: []Suggestion{
					{Kind: SuggestSwitchStrategy, From: bad, To: *c.RequiredStrategy},
				},
			})
		}
	}

	if c.Deterministic {
		if callee, ok := violatesDeterministic(fn); ok {
			violations = append(violations, ContractViolation{
				Function: fnName,
				Field:    FieldDeterministic,
				Computed: 1,
				Declared: 0,
				Suggestions: []Suggestion{
					{Kind: SuggestRelaxBound, Note: fmt.Sprintf("calls %q, a non-deterministic primitive", callee)},
				},
			})
		}
	}

	return violations
}

// violatesRequiredStrategy reports whether fn allocates under a strategy
// other than required or Stack, returning the offending strategy.
func violatesRequiredStrategy(fn *bir.Function, required ast.MemoryStrategy) (ast.MemoryStrategy, bool) {
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instr {
			if alloc, ok := in.(bir.Allocate); ok {
				if alloc.Strategy != required && alloc.Strategy != ast.StrategyStack {
					return alloc.Strategy, true
				}
			}
		}
	}
	return ast.StrategyInferred, false
}

// violatesDeterministic reports whether fn calls a name suggestive of a
// non-deterministic primitive (randomness, wall-clock time, concurrent
// scheduling), returning the offending callee.
func violatesDeterministic(fn *bir.Function) (string, bool) {
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instr {
			if call, ok := in.(bir.Call); ok && isNonDeterministicName(call.Callee) {
				return call.Callee, true
			}
		}
	}
	return "", false
}

func isNonDeterministicName(name string) bool {
	switch name {
	case "random", "rand", "time_now", "uuid_v4", "thread_spawn":
		return true
	default:
		return false
	}
}

// violatesWaitFree reports whether fn's BIR contains a Manual allocation
// or a call to a name suggestive of a blocking primitive, either of which
// disqualifies a function from being wait_free.
func violatesWaitFree(fn *bir.Function) (string, bool) {
	for _, blk := range fn.Blocks {
		for _, in := range blk.Instr {
			switch v := in.(type) {
			case bir.Allocate:
				if v.Strategy == ast.StrategyManual {
					return "contains a Manual allocation", true
				}
			case bir.Call:
				if isBlockingName(v.Callee) {
					return fmt.Sprintf("calls %q, a blocking primitive", v.Callee), true
				}
			}
		}
	}
	return "", false
}

func isBlockingName(name string) bool {
	switch name {
	case "lock", "mutex_lock", "channel_recv", "sleep", "wait":
		return true
	default:
		return false
	}
}
