// Package ownership implements per-function dataflow over the typed AST,
// verifying move/borrow/consume rules and region containment.
package ownership

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/source"
)

// BorrowInfo records one live borrow of a symbol.
type BorrowInfo struct {
	Borrower ast.SymbolID // the reference-typed binding holding the borrow
	Mutable  bool
	Site     source.Span
}

// VarState is the abstract dataflow state for one local binding, drawn
// from {Owned, BorrowedShared(n), BorrowedExclusive, Consumed}.
type VarState struct {
	Kind       ast.Ownership
	Borrows    []BorrowInfo // active shared borrows, when Kind == BorrowedShared
	Exclusive  *BorrowInfo  // the single active exclusive borrow, when Kind == BorrowedExclusive
	MovedAt    source.Span
	MoveReason string

	// ManualPending is true once a Manual-strategy value has been
	// allocated into this binding and not yet freed.
	ManualPending bool
	// RegionOf names the region this binding's value was allocated into,
	// or 0 if not Region-strategy.
	RegionOf uint32
}

// clone returns a deep-enough copy for branch-local mutation during
// if/match join computation.
func (v *VarState) clone() *VarState {
	c := *v
	c.Borrows = append([]BorrowInfo(nil), v.Borrows...)
	return &c
}

// State is the set of all tracked bindings' states at one program point.
type State map[ast.SymbolID]*VarState

func newState() State { return make(State) }

func (s State) get(id ast.SymbolID) *VarState {
	v, ok := s[id]
	if !ok {
		v = &VarState{Kind: ast.OwnershipOwned}
		s[id] = v
	}
	return v
}

// clone deep-copies the state map for independent branch analysis.
func (s State) clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}

// join computes the least-upper-bound of two post-branch states: Consumed
// joined with anything is Consumed — a value moved on one branch is
// considered consumed on the merge.
func join(a, b State) State {
	out := make(State, len(a)+len(b))
	keys := make(map[ast.SymbolID]bool)
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	for k := range keys {
		av, aok := a[k]
		bv, bok := b[k]
		switch {
		case aok && bok:
			out[k] = joinVar(av, bv)
		case aok:
			out[k] = av.clone()
		case bok:
			out[k] = bv.clone()
		}
	}
	return out
}

func joinVar(a, b *VarState) *VarState {
	if a.Kind == ast.OwnershipConsumed || b.Kind == ast.OwnershipConsumed {
		consumed := a
		if a.Kind != ast.OwnershipConsumed {
			consumed = b
		}
		return consumed.clone()
	}
	// Any other disagreement conservatively collapses to the first state;
	// a genuinely divergent borrow pattern across branches is rejected
	// earlier, at the point each branch's borrow was created.
	return a.clone()
}
