package edition

import (
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/101shaan/Bract/internal/ast"
)

func TestCheckAllowsEmptyConstraint(t *testing.T) {
	v, err := CheckCurrent("noop", &ast.PerformanceContract{})
	if err != nil || v != nil {
		t.Fatalf("Check = (%v, %v), want (nil, nil)", v, err)
	}
}

func TestCheckAllowsNilContract(t *testing.T) {
	v, err := CheckCurrent("noop", nil)
	if err != nil || v != nil {
		t.Fatalf("Check = (%v, %v), want (nil, nil)", v, err)
	}
}

func TestCheckSatisfiedConstraintPasses(t *testing.T) {
	cur := semver.MustParse("0.3.5")
	v, err := Check("fast_path", &ast.PerformanceContract{RequiresEdition: "^0.3"}, cur)
	if err != nil || v != nil {
		t.Fatalf("Check = (%v, %v), want (nil, nil) for 0.3.5 satisfying ^0.3", v, err)
	}
}

func TestCheckUnsatisfiedConstraintReportsViolation(t *testing.T) {
	cur := semver.MustParse("0.2.0")
	v, err := Check("fast_path", &ast.PerformanceContract{RequiresEdition: "^0.3"}, cur)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if v == nil {
		t.Fatal("expected a Violation for 0.2.0 against ^0.3")
	}
	if v.Function != "fast_path" || v.Constraint != "^0.3" {
		t.Fatalf("Violation = %+v, want Function=fast_path Constraint=^0.3", v)
	}
}

func TestCheckInvalidConstraintErrors(t *testing.T) {
	_, err := CheckCurrent("broken", &ast.PerformanceContract{RequiresEdition: "not-a-constraint!!"})
	if err == nil {
		t.Fatal("expected an error for a malformed semver constraint")
	}
}
