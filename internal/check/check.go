// Package check implements : the type & strategy checker. It
// extends Hindley-Milner unification to the product lattice (shape,
// strategy) described in internal/types, and produces a typed AST where
// every expression has a concrete Type with a concrete MemoryStrategy and
// no inference variables remain.
package check

import (
	"fmt"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/resolver"
	"github.com/101shaan/Bract/internal/source"
	"github.com/101shaan/Bract/internal/types"
)

// ExprTypes maps every checked expression node to its final, fully
// resolved type. The BIR builder and ownership analyzer both consume this.
type ExprTypes map[ast.Expr]*ast.Type

// Checker holds the state for checking a single function. Per ,
// a function is a unit of work: one Checker is used per function and
// discarded, so no cross-function mutable state is shared except through
// the read-only scope tree and the (external) monomorphization cache.
type Checker struct {
	scopes      *resolver.ScopeTree
	interner    *intern.Interner
	unifier     *types.Unifier
	liveRegions map[intern.Id]bool
	types       ExprTypes
	diags       *diagnostic.WorkerBuffer
	// contractStack tracks the enclosing function's declared contract for
	// call-site carriage checks; nil when unconstrained.
	contractStack []*ast.PerformanceContract
}

// New creates a checker for one function, given the scope tree produced by
// the resolver and a worker-local diagnostic buffer.
func New(scopes *resolver.ScopeTree, interner *intern.Interner, diags *diagnostic.WorkerBuffer) *Checker {
	live := make(map[intern.Id]bool)
	return &Checker{
		scopes:      scopes,
		interner:    interner,
		unifier:     types.NewUnifier(live),
		liveRegions: live,
		types:       make(ExprTypes),
		diags:       diags,
	}
}

// Types exposes the final expression->type map after CheckFunction returns.
func (c *Checker) Types() ExprTypes { return c.types }

// CheckFunction type-checks fn's body and returns the final fully-resolved
// function type (params, return, strategy), or an error if any fatal type
// error occurred.
func (c *Checker) CheckFunction(fn *ast.FunctionDecl) (*ast.Type, error) {
	paramTypes := make([]*ast.Type, len(fn.Params))
	for i, p := range fn.Params {
		pt := p.Type
		if pt == nil {
			pt = c.unifier.Fresh()
		}
		paramTypes[i] = pt
		if sym := c.scopes.Symbol(p.Symbol); sym != nil {
			sym.DeclaredType = pt
		}
	}

	retType := fn.RetType
	if retType == nil {
		retType = ast.NewPrimitive(ast.PrimUnit, ast.StrategyStack)
	}

	c.contractStack = append(c.contractStack, fn.Contract)
	defer func() { c.contractStack = c.contractStack[:len(c.contractStack)-1] }()

	var bodyType *ast.Type
	var err error
	if fn.Body != nil {
		bodyType, err = c.inferBlock(fn.Body)
		if err != nil {
			return nil, err
		}
		if bodyType != nil {
			if uerr := c.unifier.Unify(retType, bodyType); uerr != nil {
				c.reportUnify(fn.Body.NodeSpan(), uerr)
				return nil, uerr
			}
		}
	}

	finalRet, err := c.unifier.Finalize(retType)
	if err != nil {
		c.reportUnify(fn.Span, err)
		return nil, err
	}

	finalParams := make([]*ast.Type, len(paramTypes))
	for i, pt := range paramTypes {
		fp, err := c.unifier.Finalize(pt)
		if err != nil {
			c.reportUnify(fn.Params[i].Span, err)
			return nil, err
		}
		finalParams[i] = fp
	}

	return &ast.Type{
		Kind:     ast.TypeFunction,
		Strategy: ast.StrategyStack,
		Params:   finalParams,
		Ret:      finalRet,
		Contract: fn.Contract,
		Span:     fn.Span,
	}, nil
}

func (c *Checker) reportUnify(span source.Span, err error) {
	ue, ok := err.(*types.Error)
	if !ok {
		c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryType).
			Span(span).Message("%s", err.Error()).Build())
		return
	}

	cat := diagnostic.CategoryType
	if ue.Kind == types.ErrIncompatibleStrategies || ue.Kind == types.ErrRegionEscape {
		cat = diagnostic.CategoryStrategy
	}

	b := diagnostic.New().Error().Category(cat).Code(ue.Kind.Code()).Span(span).Message("%s", ue.Message)
	c.diags.Report(b.Build())
}

func (c *Checker) typeError(span ast.Node, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	c.diags.Report(diagnostic.New().Error().Category(diagnostic.CategoryType).
		Code("E_TYPE_MISMATCH").Span(span.NodeSpan()).Message("%s", msg).Build())
	return &types.Error{Kind: types.ErrTypeMismatch, Message: msg}
}
