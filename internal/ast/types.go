package ast

import (
	"fmt"
	"strings"

	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/source"
)

// TypeKind tags the shape of a Type node.
type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeArray
	TypeSlice
	TypeTuple
	TypeFunction
	TypeStruct
	TypeEnum
	TypeReference
	TypePointer
	TypeVar
)

func (k TypeKind) String() string {
	switch k {
	case TypePrimitive:
		return "Primitive"
	case TypeArray:
		return "Array"
	case TypeSlice:
		return "Slice"
	case TypeTuple:
		return "Tuple"
	case TypeFunction:
		return "Function"
	case TypeStruct:
		return "Struct"
	case TypeEnum:
		return "Enum"
	case TypeReference:
		return "Reference"
	case TypePointer:
		return "Pointer"
	case TypeVar:
		return "Var"
	default:
		return "Unknown"
	}
}

// Primitive enumerates the built-in scalar kinds.
type Primitive int

const (
	PrimI8 Primitive = iota
	PrimI16
	PrimI32
	PrimI64
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimF32
	PrimF64
	PrimBool
	PrimChar
	PrimUnit
)

func (p Primitive) String() string {
	names := [...]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "bool", "char", "unit"}
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

func (p Primitive) IsNumeric() bool { return p != PrimBool && p != PrimChar && p != PrimUnit }
func (p Primitive) IsInteger() bool { return p.IsNumeric() && p != PrimF32 && p != PrimF64 }

// TypeVarID identifies an inference variable produced by the checker.
type TypeVarID uint32

// Type is the tagged tree representing a Bract type. Every Type carries a
// MemoryStrategy slot; unification must agree on both the structural shape
// and the strategy.
type Type struct {
	Kind     TypeKind
	Strategy MemoryStrategy
	Span     source.Span

	// TypePrimitive
	Prim Primitive

	// TypeArray / TypeSlice
	Elem *Type
	Len  int64 // TypeArray only; -1 if not yet known

	// TypeTuple
	Fields []*Type

	// TypeFunction
	Params   []*Type
	Ret      *Type
	Contract *PerformanceContract

	// TypeStruct / TypeEnum
	DeclID intern.Id
	Args   []*Type // generic instantiation arguments

	// TypeReference
	Target     *Type
	Mutable    bool
	Lifetime   LifetimeID
	RefOwnKind Ownership // Borrowed(Shared) or Borrowed(Exclusive)

	// TypePointer reuses Target/Mutable above.

	// TypeVar
	Var TypeVarID

	// RegionID is set when Strategy == StrategyRegion, naming which live
	// region this value was allocated into. Two Region-strategy types only
	// unify if their RegionID matches.
	RegionID intern.Id
}

// NewPrimitive builds a primitive type with the given strategy.
func NewPrimitive(p Primitive, strat MemoryStrategy) *Type {
	return &Type{Kind: TypePrimitive, Prim: p, Strategy: strat}
}

// NewVar builds a fresh inference-variable type; its strategy slot is
// itself unresolved (StrategyInferred) until unification pins it down.
func NewVar(id TypeVarID) *Type {
	return &Type{Kind: TypeVar, Var: id, Strategy: StrategyInferred}
}

// String renders a human-readable type signature, e.g. "i32[Stack]" or
// "&mut i32[Stack]".
func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}

	switch t.Kind {
	case TypePrimitive:
		return fmt.Sprintf("%s[%s]", t.Prim, t.Strategy)
	case TypeArray:
		return fmt.Sprintf("[%s; %d][%s]", t.Elem, t.Len, t.Strategy)
	case TypeSlice:
		return fmt.Sprintf("[%s][%s]", t.Elem, t.Strategy)
	case TypeTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return fmt.Sprintf("(%s)[%s]", strings.Join(parts, ", "), t.Strategy)
	case TypeFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Ret)
	case TypeStruct:
		return fmt.Sprintf("struct#%d[%s]", t.DeclID, t.Strategy)
	case TypeEnum:
		return fmt.Sprintf("enum#%d[%s]", t.DeclID, t.Strategy)
	case TypeReference:
		prefix := "&"
		if t.Mutable {
			prefix = "&mut "
		}
		return fmt.Sprintf("%s%s", prefix, t.Target)
	case TypePointer:
		prefix := "*const "
		if t.Mutable {
			prefix = "*mut "
		}
		return fmt.Sprintf("%s%s", prefix, t.Target)
	case TypeVar:
		return fmt.Sprintf("?%d", t.Var)
	default:
		return "<invalid type>"
	}
}

// IsNonCopyable reports whether a value of this type must be moved rather
// than implicitly copied on read: its own strategy is
// non-copyable, or it transitively contains a non-copyable field.
func (t *Type) IsNonCopyable() bool {
	if t == nil {
		return false
	}
	if !t.Strategy.IsCopyable() {
		return true
	}
	switch t.Kind {
	case TypeTuple:
		for _, f := range t.Fields {
			if f.IsNonCopyable() {
				return true
			}
		}
	case TypeStruct:
		for _, a := range t.Args {
			if a.IsNonCopyable() {
				return true
			}
		}
	case TypeArray, TypeSlice:
		return t.Elem.IsNonCopyable()
	}
	return false
}

// PerformanceContract is the declared upper bound on a function's
// execution cost.
// A nil pointer field means that dimension is unconstrained.
type PerformanceContract struct {
	MaxCost          *uint64
	MaxMemory        *uint64
	MaxAllocations   *uint64
	MaxStack         *uint64
	LatencyBound     *uint64
	RequiredStrategy *MemoryStrategy
	RequiresEdition  string // semver constraint, e.g. "^0.3"; "" if unset
	Deterministic    bool
	WaitFree         bool
}

// IsEmpty reports whether the contract constrains nothing at all.
func (c *PerformanceContract) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.MaxCost == nil && c.MaxMemory == nil && c.MaxAllocations == nil &&
		c.MaxStack == nil && c.LatencyBound == nil && c.RequiredStrategy == nil &&
		!c.Deterministic && !c.WaitFree && c.RequiresEdition == ""
}
