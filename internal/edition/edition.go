// Package edition checks a function's declared @memory/performance-contract
// edition requirement against the compiling toolchain's language edition
// (Domain Stack: "a PerformanceContract or @memory annotation can
// require a minimum language edition (requires_edition = \"^0.3\"); checked
// against the compiling toolchain's edition at resolution time"). Modeled on
// Orizon's use of Masterminds/semver for its own toolchain/edition gating.
package edition

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/101shaan/Bract/internal/ast"
)

// Current is the edition of this toolchain build. Functions whose
// RequiresEdition constraint Current doesn't satisfy are rejected before
// any contract or ownership analysis runs, since an unsupported edition may
// mean the strategy/contract vocabulary itself has changed meaning.
var Current = semver.MustParse("0.3.0")

// Violation reports a function whose edition requirement the current
// toolchain cannot satisfy.
type Violation struct {
	Function   string
	Constraint string
	Current    string
}

func (v Violation) Error() string {
	return fmt.Sprintf("function %q requires edition %q, toolchain is %q", v.Function, v.Constraint, v.Current)
}

// Check validates fn.Contract.RequiresEdition (if set) against cur. An empty
// constraint is always satisfied: most functions carry no edition
// requirement at all.
func Check(name string, contract *ast.PerformanceContract, cur *semver.Version) (*Violation, error) {
	if contract == nil || contract.RequiresEdition == "" {
		return nil, nil
	}
	c, err := semver.NewConstraint(contract.RequiresEdition)
	if err != nil {
		return nil, fmt.Errorf("function %q: invalid requires_edition constraint %q: %w", name, contract.RequiresEdition, err)
	}
	if c.Check(cur) {
		return nil, nil
	}
	return &Violation{Function: name, Constraint: contract.RequiresEdition, Current: cur.String()}, nil
}

// CheckCurrent is Check against the toolchain's own Current edition.
func CheckCurrent(name string, contract *ast.PerformanceContract) (*Violation, error) {
	return Check(name, contract, Current)
}
