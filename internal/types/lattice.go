// Package types implements a Hindley-Milner-style unification engine
// extended to a product lattice (shape, strategy): a type variable carries
// independent slots for shape and strategy, and unification succeeds only
// when both slots unify.
package types

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
)

// JoinError is returned when two strategies cannot be joined under the
// strategy compatibility table.
type JoinError struct {
	A, B ast.MemoryStrategy
	// RegionMismatch is set when both sides are Region but name different
	// region identifiers.
	RegionMismatch bool
}

func (e *JoinError) Error() string {
	if e.RegionMismatch {
		return fmt.Sprintf("incompatible strategies: %s and %s name different regions", e.A, e.B)
	}
	return fmt.Sprintf("incompatible strategies: %s and %s", e.A, e.B)
}

// JoinStrategy applies the strategy compatibility rules in order,
// returning the first applicable result. regionsEqual is consulted only
// when both a and b are StrategyRegion.
func JoinStrategy(a, b ast.MemoryStrategy, regionsEqual bool) (ast.MemoryStrategy, error) {
	if a == b {
		if a == ast.StrategyRegion && !regionsEqual {
			return 0, &JoinError{A: a, B: b, RegionMismatch: true}
		}
		return a, nil
	}

	// Normalize so the switch below only has to consider one ordering;
	// the table is symmetric.
	lo, hi := a, b
	swapped := false
	if lo > hi {
		lo, hi = hi, lo
		swapped = true
	}

	result, ok := joinLowerTriangle(lo, hi)
	if !ok {
		return 0, &JoinError{A: a, B: b}
	}
	_ = swapped // join results are symmetric regardless of operand order

	return result, nil
}

// joinLowerTriangle encodes the table with lo < hi in enum order
// (Stack < Linear < Region < Manual < SmartPtr).
func joinLowerTriangle(lo, hi ast.MemoryStrategy) (ast.MemoryStrategy, bool) {
	switch {
	case lo == ast.StrategyStack && hi == ast.StrategyLinear:
		return ast.StrategyLinear, true // promote
	case lo == ast.StrategyStack && hi == ast.StrategyRegion:
		return 0, false // region escape
	case lo == ast.StrategyStack && hi == ast.StrategyManual:
		return ast.StrategyManual, true // promote
	case lo == ast.StrategyStack && hi == ast.StrategySmartPtr:
		return ast.StrategySmartPtr, true // promote
	case lo == ast.StrategyLinear && hi == ast.StrategyRegion:
		return 0, false
	case lo == ast.StrategyLinear && hi == ast.StrategyManual:
		return ast.StrategyManual, true
	case lo == ast.StrategyLinear && hi == ast.StrategySmartPtr:
		return ast.StrategySmartPtr, true // consume -> share
	case lo == ast.StrategyRegion && hi == ast.StrategyManual:
		return 0, false
	case lo == ast.StrategyRegion && hi == ast.StrategySmartPtr:
		return 0, false
	case lo == ast.StrategyManual && hi == ast.StrategySmartPtr:
		return 0, false
	default:
		return 0, false
	}
}
