// Package contract implements the contract cost engine. It estimates a
// per-function cost vector from BIR and verifies it against the function's
// declared PerformanceContract.
package contract

import "github.com/101shaan/Bract/internal/ast"

// Cost is the per-function resource vector defines: "per-
// function cost vector {cycles, memory, allocations, stack}".
type Cost struct {
	Cycles      uint64
	Memory      uint64
	Allocations uint64
	Stack       uint64
}

// TargetProfile indexes the per-BIR-op base cost by target architecture
//. internal/contract ships
// DefaultProfile as the architecture-neutral baseline table; a real target
// backend supplies its own via the same interface.
type TargetProfile interface {
	// OpCost returns the base cycle cost of one occurrence of op, excluding
	// any op-specific surcharge (e.g. a Call's callee cost, computed
	// separately).
	OpCost(op OpKind) uint64
	// PageSize reports the target's page size, used to size region-growth
	// requests; internal/lower is the other consumer of this value.
	PageSize() uint64
}

// OpKind enumerates the primitive BIR operators cost table
// indexes by.
type OpKind int

const (
	OpArithmetic OpKind = iota // add/sub/and/or/xor/shift
	OpMul
	OpDivMod
	OpLoadStoreHit
	OpCallBase // the "10" in "10 + callee cost"
	OpBranch
	OpAllocateStack
	OpAllocateLinear
	OpAllocateRegion
	OpAllocateManual
	OpAllocateSmartPtr
	OpArcRefcount // ArcIncref / ArcDecref
	OpBoundsCheck
	OpMoveNonCopy
)

// defaultCosts is the baseline table from , verbatim.
var defaultCosts = map[OpKind]uint64{
	OpArithmetic:       1,
	OpMul:              3,
	OpDivMod:           20,
	OpLoadStoreHit:     4,
	OpCallBase:         10,
	OpBranch:           2,
	OpAllocateStack:    0,
	OpAllocateLinear:   10,
	OpAllocateRegion:   5,
	OpAllocateManual:   50,
	OpAllocateSmartPtr: 40,
	OpArcRefcount:      25,
	OpBoundsCheck:      5,
	OpMoveNonCopy:      1,
}

// genericProfile is the architecture-neutral TargetProfile backing
// DefaultProfile; real targets may wrap or replace its table entirely.
type genericProfile struct {
	costs    map[OpKind]uint64
	pageSize uint64
}

func (p *genericProfile) OpCost(op OpKind) uint64 { return p.costs[op] }
func (p *genericProfile) PageSize() uint64        { return p.pageSize }

// DefaultProfile returns the baseline cost table with a 4KiB
// page size, used when the caller has not selected a specific target.
func DefaultProfile() TargetProfile {
	costs := make(map[OpKind]uint64, len(defaultCosts))
	for k, v := range defaultCosts {
		costs[k] = v
	}
	return &genericProfile{costs: costs, pageSize: 4096}
}

// strategyAllocOp maps an Allocate instruction's strategy to its OpKind.
func strategyAllocOp(s ast.MemoryStrategy) OpKind {
	switch s {
	case ast.StrategyLinear:
		return OpAllocateLinear
	case ast.StrategyRegion:
		return OpAllocateRegion
	case ast.StrategyManual:
		return OpAllocateManual
	case ast.StrategySmartPtr:
		return OpAllocateSmartPtr
	default:
		return OpAllocateStack
	}
}
