// Package lower implements BIR to target-IR lowering. The result is close
// to the target ISA, modeled on Orizon's internal/lir, with every
// allocation strategy lowered to its fixed runtime ABI call.
package lower

import (
	"fmt"
	"strings"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
)

// Runtime ABI symbol names. Every lowering rule below references these and
// only these external symbols.
const (
	ABIMalloc        = "bract_malloc"
	ABIFree          = "bract_free"
	ABIArcInc        = "bract_arc_inc"
	ABIArcDec        = "bract_arc_dec"
	ABIRegionAlloc   = "bract_region_alloc"
	ABIRegionRelease = "bract_region_release"
	ABITrapBounds    = "bract_trap_bounds"
	ABIProfile       = "bract_profile"
)

// Module is a lowered compilation unit, one per bir.Module.
type Module struct {
	Name      string
	Functions []*Function
}

// Function is a sequence of basic blocks of target-like instructions.
type Function struct {
	Name   string
	Blocks []*BasicBlock
}

// BasicBlock contains a linear list of target instructions.
type BasicBlock struct {
	Label string
	Insns []Insn
}

func (f *Function) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s {\n", f.Name)
	for _, blk := range f.Blocks {
		b.WriteString(blk.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (bb *BasicBlock) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", bb.Label)
	for _, in := range bb.Insns {
		fmt.Fprintf(&b, "  %s\n", in.String())
	}
	return b.String()
}

// Insn is implemented by every lowered instruction.
type Insn interface{ fmt.Stringer }

// StackSlot reserves a stack slot of the given size and alignment.
type StackSlot struct {
	Dst   string
	Size  uint64
	Align uint64
}

func (s StackSlot) String() string {
	return fmt.Sprintf("%s = stackslot size=%d align=%d", s.Dst, s.Size, s.Align)
}

// CallExtern invokes a fixed runtime ABI symbol.
type CallExtern struct {
	Dst    string
	Symbol string
	Args   []string
}

func (c CallExtern) String() string {
	dst := ""
	if c.Dst != "" {
		dst = c.Dst + " = "
	}
	return fmt.Sprintf("%scall %s(%s)", dst, c.Symbol, strings.Join(c.Args, ", "))
}

// RegionBump performs a bump allocation against a region's current page
// pointer, growing via ABIRegionAlloc on overflow.
type RegionBump struct {
	Dst      string
	Region   string
	Size     uint64
	PageSize uint64
}

func (r RegionBump) String() string {
	return fmt.Sprintf("%s = regionbump %s size=%d page=%d", r.Dst, r.Region, r.Size, r.PageSize)
}

// RefcountInit allocates sizeof(refcount_header)+size and sets the header's
// atomic counter to 1.
type RefcountInit struct {
	Dst  string
	Size uint64
}

func (r RefcountInit) String() string {
	return fmt.Sprintf("%s = refcount_init size=%d header=4", r.Dst, r.Size)
}

// TrapBounds emits a conditional branch to ABITrapBounds on a failed
// bounds check.
type TrapBounds struct {
	Cond string // a prior comparison result; "" means unconditional
}

func (t TrapBounds) String() string {
	if t.Cond == "" {
		return fmt.Sprintf("call %s()", ABITrapBounds)
	}
	return fmt.Sprintf("br.if %s, %s()", t.Cond, ABITrapBounds)
}

// ProfileCall emits a debug-mode call to ABIProfile.
type ProfileCall struct{ LocationID uint32 }

func (p ProfileCall) String() string {
	return fmt.Sprintf("call %s(%d)", ABIProfile, p.LocationID)
}

// Plain wraps a BIR instruction that needs no strategy-specific lowering
// (arithmetic, comparisons, unconditional/conditional branches, returns):
// its textual form is carried through unchanged.
type Plain struct{ Text string }

func (p Plain) String() string { return p.Text }

// Lowerer lowers one bir.Function to target IR against a fixed page size.
type Lowerer struct {
	pageSize   uint64
	locationID uint32
	locations  map[string]uint32
}

// NewLowerer creates a lowerer using the host's page size
// (golang.org/x/sys-backed; see pagesize_unix.go/pagesize_other.go).
func NewLowerer() *Lowerer {
	return &Lowerer{pageSize: hostPageSize(), locations: make(map[string]uint32)}
}

// NewLowererForPageSize creates a lowerer against an explicit page size,
// for targets whose page size is not the host's (e.g. cross-compilation).
func NewLowererForPageSize(pageSize uint64) *Lowerer {
	return &Lowerer{pageSize: pageSize, locations: make(map[string]uint32)}
}

func (l *Lowerer) locationFor(name string) uint32 {
	if id, ok := l.locations[name]; ok {
		return id
	}
	l.locationID++
	l.locations[name] = l.locationID
	return l.locationID
}

// Lower translates fn's BIR blocks into target instructions one-for-one,
// strategy-aware per instruction.
func (l *Lowerer) Lower(fn *bir.Function) *Function {
	out := &Function{Name: fn.Name}
	for _, blk := range fn.Blocks {
		out.Blocks = append(out.Blocks, l.lowerBlock(blk))
	}
	return out
}

func (l *Lowerer) lowerBlock(blk *bir.BasicBlock) *BasicBlock {
	out := &BasicBlock{Label: blk.Label}
	for _, in := range blk.Instr {
		out.Insns = append(out.Insns, l.lowerInstr(in)...)
	}
	out.Insns = append(out.Insns, l.lowerTerm(blk.Term))
	return out
}

func (l *Lowerer) lowerInstr(in bir.Instr) []Insn {
	switch v := in.(type) {
	case bir.Allocate:
		return l.lowerAllocate(v)

	case bir.Free:
		return []Insn{CallExtern{Symbol: ABIFree, Args: []string{v.Target.String()}}}

	case bir.ArcIncref:
		return []Insn{CallExtern{Symbol: ABIArcInc, Args: []string{v.Target.String()}}}

	case bir.ArcDecref:
		return []Insn{CallExtern{Symbol: ABIArcDec, Args: []string{v.Target.String()}}}

	case bir.RegionExit:
		return []Insn{CallExtern{Symbol: ABIRegionRelease, Args: []string{v.Region}}}

	case bir.RegionEnter:
		return []Insn{Plain{Text: fmt.Sprintf("; region %s entered", v.Region)}}

	case bir.BoundsCheck:
		cmp := fmt.Sprintf("%%cmp.%s", v.Index)
		return []Insn{
			Plain{Text: fmt.Sprintf("%s = cmp.uge %s, %s", cmp, v.Index, v.Len)},
			TrapBounds{Cond: cmp},
		}

	case bir.ProfilerHook:
		return []Insn{ProfileCall{LocationID: l.locationFor(v.Location)}}

	case bir.Move:
		return []Insn{Plain{Text: fmt.Sprintf("%s = mov %s", v.Dst, v.Source)}}

	case bir.BinOp:
		return []Insn{Plain{Text: fmt.Sprintf("%s = %s %s, %s", v.Dst, v.Op, v.LHS, v.RHS)}}

	case bir.Call:
		return []Insn{Plain{Text: fmt.Sprintf("%s = call %s(%d args)", v.Dst, v.Callee, len(v.Args))}}

	case bir.Load:
		return []Insn{Plain{Text: fmt.Sprintf("%s = load %s", v.Dst, v.Addr)}}

	case bir.Store:
		return []Insn{Plain{Text: fmt.Sprintf("store %s, %s", v.Addr, v.Val)}}

	default:
		return nil
	}
}

// lowerAllocate implements five allocation rules, one per memory strategy.
func (l *Lowerer) lowerAllocate(v bir.Allocate) []Insn {
	switch v.Strategy {
	case ast.StrategyStack:
		return []Insn{StackSlot{Dst: v.Dst, Size: v.Size, Align: naturalAlign(v.Size)}}

	case ast.StrategyLinear, ast.StrategyManual:
		return []Insn{CallExtern{Dst: v.Dst, Symbol: ABIMalloc, Args: []string{fmt.Sprintf("%d", v.Size)}}}

	case ast.StrategyRegion:
		return []Insn{RegionBump{Dst: v.Dst, Region: v.Region, Size: v.Size, PageSize: l.pageSize}}

	case ast.StrategySmartPtr:
		return []Insn{RefcountInit{Dst: v.Dst, Size: v.Size}}

	default:
		return []Insn{StackSlot{Dst: v.Dst, Size: v.Size, Align: naturalAlign(v.Size)}}
	}
}

func (l *Lowerer) lowerTerm(t bir.Terminator) Insn {
	switch v := t.(type) {
	case bir.Return:
		if v.Val != nil {
			return Plain{Text: fmt.Sprintf("ret %s", v.Val.String())}
		}
		return Plain{Text: "ret"}
	case bir.Branch:
		return Plain{Text: fmt.Sprintf("br %s", v.Target)}
	case bir.CondBranch:
		return Plain{Text: fmt.Sprintf("brcond %s, %s, %s", v.Cond, v.True, v.False)}
	case bir.Unreachable:
		return Plain{Text: "unreachable"}
	default:
		return Plain{Text: "unreachable"}
	}
}

// naturalAlign picks the largest power-of-two alignment not exceeding
// size, capped at 8 (the widest primitive this target model supports).
func naturalAlign(size uint64) uint64 {
	align := uint64(1)
	for align*2 <= size && align < 8 {
		align *= 2
	}
	return align
}
