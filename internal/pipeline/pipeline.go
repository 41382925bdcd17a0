// Package pipeline implements parallel per-function compilation. One
// goroutine analyzes and lowers one function; a shared cancellation
// propagates the first fatal error; diagnostics are collected per-function
// and merged in span order at the end. Modeled on Orizon's errgroup-based
// dependency-graph builder (cmd/orizon/pkg/utils/graph.go).
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
	"github.com/101shaan/Bract/internal/check"
	"github.com/101shaan/Bract/internal/contract"
	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/edition"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/lower"
	"github.com/101shaan/Bract/internal/ownership"
	"github.com/101shaan/Bract/internal/resolver"
)

// Result is one function's full compilation output.
type Result struct {
	Name       string
	BIR        *bir.Function
	Lowered    *lower.Function
	Cost       contract.Cost
	Violations []contract.ContractViolation
	Failed     bool
}

// Config bounds pipeline concurrency and selects the target cost model.
type Config struct {
	// MaxParallel caps concurrent function workers; 0 selects
	// runtime.GOMAXPROCS(0).
	MaxParallel int
	Profile     contract.TargetProfile
}

// Compiler drives type checking, ownership analysis, BIR construction,
// cost estimation, and lowering over every function of an already-resolved
// module, fanning work out one goroutine per function.
type Compiler struct {
	scopes   *resolver.ScopeTree
	interner *intern.Interner
	sink     *diagnostic.Sink
	cfg      Config
	monomorphs *MonomorphCache
	lowerer  *lower.Lowerer
}

// New creates a Compiler over an already name-resolved module.
func New(scopes *resolver.ScopeTree, interner *intern.Interner, cfg Config) *Compiler {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = runtime.GOMAXPROCS(0)
	}
	if cfg.Profile == nil {
		cfg.Profile = contract.DefaultProfile()
	}
	return &Compiler{
		scopes:     scopes,
		interner:   interner,
		sink:       diagnostic.NewSink(),
		cfg:        cfg,
		monomorphs: NewMonomorphCache(),
		lowerer:    lower.NewLowererForPageSize(cfg.Profile.PageSize()),
	}
}

// Diagnostics returns the merged, span-ordered diagnostic list once every
// function has completed.
func (c *Compiler) Diagnostics() []*diagnostic.Diagnostic { return c.sink.All() }

// CompileModule runs every function in fns concurrently, capped at
// cfg.MaxParallel, and returns one Result per function in input order. The
// first function whose analysis returns a fatal internal error cancels the
// remaining workers via the shared context; ordinary compile errors (type/ownership/contract
// violations) are reported as diagnostics and do not cancel siblings.
func (c *Compiler) CompileModule(ctx context.Context, fns []*ast.FunctionDecl) ([]Result, error) {
	results := make([]Result, len(fns))
	sem := make(chan struct{}, c.cfg.MaxParallel)

	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			r, err := c.compileFunction(gctx, fn)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// compileFunction runs one function through name-already-resolved type
// checking, ownership analysis, BIR construction, DCE, cost estimation,
// and target lowering. It returns an error only for an internal-compiler
// failure; ordinary rejections surface as diagnostics with Result.Failed
// set.
func (c *Compiler) compileFunction(ctx context.Context, fn *ast.FunctionDecl) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	name := c.interner.Resolve(fn.Name)
	worker := c.sink.Worker(name)
	defer worker.Flush()

	if v, err := edition.CheckCurrent(name, fn.Contract); err != nil {
		return Result{}, fmt.Errorf("edition check of %q: %w", name, err)
	} else if v != nil {
		worker.Report(diagnostic.New().Error().Category(diagnostic.CategoryContract).
			Code("E_EDITION_UNSUPPORTED").Message("%s", v.Error()).Build())
		return Result{Name: name, Failed: true}, nil
	}

	checker := check.New(c.scopes, c.interner, worker)
	if _, err := checker.CheckFunction(fn); err != nil {
		return Result{Name: name, Failed: true}, nil
	}

	analyzer := ownership.New(c.scopes, c.interner, checker.Types(), worker)
	if err := analyzer.AnalyzeFunction(fn); err != nil {
		return Result{Name: name, Failed: true}, nil
	}

	monoKey := monomorphKeyFor(fn)
	built, err := c.monomorphs.GetOrBuild(monoKey, func() (*bir.Function, error) {
		b := bir.NewBuilder(c.scopes, c.interner, checker.Types())
		return b.Build(fn, name), nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("monomorphization of %q: %w", name, err)
	}
	bir.EliminateDeadCode(built)

	estimator := contract.NewEstimator(c.cfg.Profile, nil)
	cost, err := estimator.Estimate(built)
	if err != nil {
		worker.Report(diagnostic.New().Error().Category(diagnostic.CategoryContract).
			Code("E_UNBOUNDED_RECURSION").Message("%v", err).Build())
		return Result{Name: name, BIR: built, Failed: true}, nil
	}

	violations := contract.Verify(name, built, cost)
	for _, v := range violations {
		worker.Report(diagnostic.New().Error().Category(diagnostic.CategoryContract).
			Code("E_CONTRACT_VIOLATION").Message("%s", v.Error()).Build())
	}

	loweredFn := c.lowerer.Lower(built)

	return Result{
		Name:       name,
		BIR:        built,
		Lowered:    loweredFn,
		Cost:       cost,
		Violations: violations,
		Failed:     len(violations) > 0 || worker.HasErrors(),
	}, nil
}
