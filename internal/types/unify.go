package types

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/intern"
)

// Error kinds produced by the checker.
type Kind int

const (
	ErrTypeMismatch Kind = iota
	ErrIncompatibleStrategies
	ErrRegionEscape
	ErrOccursCheckFailure
	ErrUnresolvableInference
)

func (k Kind) Code() string {
	switch k {
	case ErrTypeMismatch:
		return "E_TYPE_MISMATCH"
	case ErrIncompatibleStrategies:
		return "E_INCOMPATIBLE_STRATEGIES"
	case ErrRegionEscape:
		return "E_REGION_ESCAPE"
	case ErrOccursCheckFailure:
		return "E_OCCURS_CHECK_FAILURE"
	case ErrUnresolvableInference:
		return "E_UNRESOLVABLE_INFERENCE"
	default:
		return "E_UNKNOWN"
	}
}

// Error is a unification failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message) }

// Unifier holds the substitution built by unifying (shape, strategy)
// pairs recursively, one Unify call at a time, with an occurs-check
// guarding every variable binding.
type Unifier struct {
	subst     map[ast.TypeVarID]*ast.Type
	nextVar   ast.TypeVarID
	liveRegions map[intern.Id]bool
}

// NewUnifier creates an empty unifier. liveRegions is stored but not read
// by the unifier: two Region-strategy types unify exactly when their
// region IDs are equal, whether or not that region is live.
func NewUnifier(liveRegions map[intern.Id]bool) *Unifier {
	return &Unifier{subst: make(map[ast.TypeVarID]*ast.Type), nextVar: 1, liveRegions: liveRegions}
}

// Fresh allocates a new, unbound type variable.
func (u *Unifier) Fresh() *ast.Type {
	id := u.nextVar
	u.nextVar++
	return ast.NewVar(id)
}

// Resolve follows the substitution chain for t until it reaches a
// non-variable type or an unbound variable.
func (u *Unifier) Resolve(t *ast.Type) *ast.Type {
	for t != nil && t.Kind == ast.TypeVar {
		bound, ok := u.subst[t.Var]
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// Unify unifies a and b, recording substitutions. Returns an *Error on
// failure.
func (u *Unifier) Unify(a, b *ast.Type) error {
	a = u.Resolve(a)
	b = u.Resolve(b)

	if a.Kind == ast.TypeVar && b.Kind == ast.TypeVar && a.Var == b.Var {
		return nil
	}
	if a.Kind == ast.TypeVar {
		return u.bind(a.Var, b)
	}
	if b.Kind == ast.TypeVar {
		return u.bind(b.Var, a)
	}

	if a.Kind != b.Kind {
		return &Error{Kind: ErrTypeMismatch, Message: fmt.Sprintf("%s vs %s", a, b)}
	}

	if err := u.unifyStrategy(a, b); err != nil {
		return err
	}

	switch a.Kind {
	case ast.TypePrimitive:
		if a.Prim != b.Prim {
			return &Error{Kind: ErrTypeMismatch, Message: fmt.Sprintf("%s vs %s", a.Prim, b.Prim)}
		}
	case ast.TypeArray:
		if a.Len != b.Len {
			return &Error{Kind: ErrTypeMismatch, Message: fmt.Sprintf("array length %d vs %d", a.Len, b.Len)}
		}
		return u.Unify(a.Elem, b.Elem)
	case ast.TypeSlice:
		return u.Unify(a.Elem, b.Elem)
	case ast.TypeTuple:
		if len(a.Fields) != len(b.Fields) {
			return &Error{Kind: ErrTypeMismatch, Message: "tuple arity mismatch"}
		}
		for i := range a.Fields {
			if err := u.Unify(a.Fields[i], b.Fields[i]); err != nil {
				return err
			}
		}
	case ast.TypeFunction:
		if len(a.Params) != len(b.Params) {
			return &Error{Kind: ErrTypeMismatch, Message: "parameter arity mismatch"}
		}
		for i := range a.Params {
			if err := u.Unify(a.Params[i], b.Params[i]); err != nil {
				return err
			}
		}
		return u.Unify(a.Ret, b.Ret)
	case ast.TypeStruct, ast.TypeEnum:
		if a.DeclID != b.DeclID {
			return &Error{Kind: ErrTypeMismatch, Message: "distinct declarations"}
		}
		if len(a.Args) != len(b.Args) {
			return &Error{Kind: ErrTypeMismatch, Message: "generic argument arity mismatch"}
		}
		for i := range a.Args {
			if err := u.Unify(a.Args[i], b.Args[i]); err != nil {
				return err
			}
		}
	case ast.TypeReference, ast.TypePointer:
		if a.Mutable != b.Mutable {
			return &Error{Kind: ErrTypeMismatch, Message: "mutability mismatch"}
		}
		return u.Unify(a.Target, b.Target)
	}

	return nil
}

// unifyStrategy applies the strategy join table. An Inferred slot
// adopts the other side's strategy (defaulting); two Region strategies
// must name the same region or fail.
func (u *Unifier) unifyStrategy(a, b *ast.Type) error {
	if a.Strategy == b.Strategy {
		if a.Strategy == ast.StrategyRegion && a.RegionID != b.RegionID {
			return &Error{Kind: ErrRegionEscape, Message: fmt.Sprintf("regions %v and %v do not unify", a.RegionID, b.RegionID)}
		}
		return nil
	}
	if a.Strategy == ast.StrategyInferred {
		a.Strategy = b.Strategy
		a.RegionID = b.RegionID
		return nil
	}
	if b.Strategy == ast.StrategyInferred {
		b.Strategy = a.Strategy
		b.RegionID = a.RegionID
		return nil
	}

	regionsEqual := a.RegionID == b.RegionID
	joined, err := JoinStrategy(a.Strategy, b.Strategy, regionsEqual)
	if err != nil {
		je := err.(*JoinError)
		if je.A == ast.StrategyRegion || je.B == ast.StrategyRegion {
			return &Error{Kind: ErrRegionEscape, Message: err.Error()}
		}
		return &Error{Kind: ErrIncompatibleStrategies, Message: err.Error()}
	}

	a.Strategy = joined
	b.Strategy = joined

	return nil
}

// occurs reports whether variable v appears free within t, guarding
// against infinite types.
func (u *Unifier) occurs(v ast.TypeVarID, t *ast.Type) bool {
	t = u.Resolve(t)
	if t.Kind == ast.TypeVar {
		return t.Var == v
	}
	switch t.Kind {
	case ast.TypeArray, ast.TypeSlice:
		return u.occurs(v, t.Elem)
	case ast.TypeTuple:
		for _, f := range t.Fields {
			if u.occurs(v, f) {
				return true
			}
		}
	case ast.TypeFunction:
		for _, p := range t.Params {
			if u.occurs(v, p) {
				return true
			}
		}
		return u.occurs(v, t.Ret)
	case ast.TypeStruct, ast.TypeEnum:
		for _, a := range t.Args {
			if u.occurs(v, a) {
				return true
			}
		}
	case ast.TypeReference, ast.TypePointer:
		return u.occurs(v, t.Target)
	}
	return false
}

func (u *Unifier) bind(v ast.TypeVarID, t *ast.Type) error {
	if t.Kind == ast.TypeVar && t.Var == v {
		return nil
	}
	if u.occurs(v, t) {
		return &Error{Kind: ErrOccursCheckFailure, Message: fmt.Sprintf("?%d occurs in %s", v, t)}
	}
	u.subst[v] = t
	return nil
}

// Finalize walks t, replacing every resolved type variable with its
// binding. It returns ErrUnresolvableInference if any variable remains
// unbound.
func (u *Unifier) Finalize(t *ast.Type) (*ast.Type, error) {
	t = u.Resolve(t)
	if t.Kind == ast.TypeVar {
		return nil, &Error{Kind: ErrUnresolvableInference, Message: fmt.Sprintf("?%d could not be resolved", t.Var)}
	}
	if t.Strategy == ast.StrategyInferred {
		// Default resolution: Stack is always permitted.
		t.Strategy = ast.StrategyStack
	}

	switch t.Kind {
	case ast.TypeArray, ast.TypeSlice:
		elem, err := u.Finalize(t.Elem)
		if err != nil {
			return nil, err
		}
		t.Elem = elem
	case ast.TypeTuple:
		for i, f := range t.Fields {
			r, err := u.Finalize(f)
			if err != nil {
				return nil, err
			}
			t.Fields[i] = r
		}
	case ast.TypeFunction:
		for i, p := range t.Params {
			r, err := u.Finalize(p)
			if err != nil {
				return nil, err
			}
			t.Params[i] = r
		}
		ret, err := u.Finalize(t.Ret)
		if err != nil {
			return nil, err
		}
		t.Ret = ret
	case ast.TypeStruct, ast.TypeEnum:
		for i, a := range t.Args {
			r, err := u.Finalize(a)
			if err != nil {
				return nil, err
			}
			t.Args[i] = r
		}
	case ast.TypeReference, ast.TypePointer:
		target, err := u.Finalize(t.Target)
		if err != nil {
			return nil, err
		}
		t.Target = target
	}

	return t, nil
}
