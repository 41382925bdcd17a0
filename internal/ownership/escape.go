package ownership

import "github.com/101shaan/Bract/internal/ast"

// EscapeKind classifies where an allocation's value ultimately ends up.
// Escape checking could be folded directly into the ownership/region pass;
// this factoring keeps the classification available as its own step:
// the dataflow's return-time region-escape check calls ClassifyReturn and
// its scope-exit borrow check calls BorrowOutlivesOwner, rather than
// inlining the logic once per caller.
type EscapeKind int

const (
	EscapeNone         EscapeKind = iota // value never leaves its declaring scope
	EscapeToCaller                       // returned from the function
	EscapeToHeap                         // stored into a SmartPtr/Manual allocation
	EscapeToRegion                       // stored into a region allocation
)

func (k EscapeKind) String() string {
	switch k {
	case EscapeNone:
		return "none"
	case EscapeToCaller:
		return "caller"
	case EscapeToHeap:
		return "heap"
	case EscapeToRegion:
		return "region"
	default:
		return "unknown"
	}
}

// ClassifyReturn classifies the escape kind of a function's return
// expression, given its final resolved type. A Region-strategy return
// value escapes to the caller across the region boundary — precisely the
// pattern `region R { let p = RegionPtr::new(v); p }` must reject.
func ClassifyReturn(t *ast.Type) EscapeKind {
	if t == nil {
		return EscapeNone
	}
	switch t.Strategy {
	case ast.StrategyRegion:
		return EscapeToRegion
	case ast.StrategySmartPtr, ast.StrategyManual:
		return EscapeToHeap
	default:
		return EscapeToCaller
	}
}

// BorrowOutlivesOwner reports whether owner still has a live borrow
// recorded against it (shared borrows in Borrows, or an Exclusive
// borrower). Called as the owner's scope ends, it detects a borrow
// tracked by the dataflow that has not yet been released.
func BorrowOutlivesOwner(owner *VarState) bool {
	if owner == nil {
		return false
	}
	return owner.Kind == ast.OwnershipBorrowedShared && len(owner.Borrows) > 0 ||
		owner.Kind == ast.OwnershipBorrowedExclusive && owner.Exclusive != nil
}
