package check

import (
	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/diagnostic"
)

// checkContractCarriage verifies contract carriage at a call site: when a
// function with contract calleeContract is called, the call site's
// enclosing contract (if any) must remain satisfiable after adding
// calleeContract's costs. This is a non-fatal check at type time — full
// enforcement happens in internal/contract; here a violation is reported
// as a warning so it surfaces early without blocking compilation of the
// rest of the function.
func (c *Checker) checkContractCarriage(call *ast.CallExpr, calleeContract *ast.PerformanceContract) {
	if len(c.contractStack) == 0 {
		return
	}
	enclosing := c.contractStack[len(c.contractStack)-1]
	if enclosing == nil || enclosing.IsEmpty() || calleeContract == nil {
		return
	}

	if enclosing.MaxCost != nil && calleeContract.MaxCost != nil && *calleeContract.MaxCost > *enclosing.MaxCost {
		c.diags.Report(diagnostic.New().Warning().Category(diagnostic.CategoryContract).
			Code("E_CONTRACT_VIOLATION").Span(call.Span).
			Message("callee's max_cost (%d) alone exceeds the enclosing contract's max_cost (%d); full verification happens in the cost engine",
				*calleeContract.MaxCost, *enclosing.MaxCost).
			Note("this is a call-time carriage check, not the final contract verdict").
			Build())
	}

	if enclosing.RequiredStrategy != nil && calleeContract.RequiredStrategy != nil &&
		*enclosing.RequiredStrategy != *calleeContract.RequiredStrategy {
		c.diags.Report(diagnostic.New().Warning().Category(diagnostic.CategoryContract).
			Code("E_CONTRACT_VIOLATION").Span(call.Span).
			Message("callee requires strategy %s but the enclosing contract requires %s",
				calleeContract.RequiredStrategy, enclosing.RequiredStrategy).
			Build())
	}
}
