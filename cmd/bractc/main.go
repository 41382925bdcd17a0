// Package main is the Bract compiler driver. It exists only to wire
// internal/pipeline end-to-end for manual smoke testing, mirroring the
// flag-based shape of cmd/orizon-compiler/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/101shaan/Bract/internal/diagnostic"
	"github.com/101shaan/Bract/internal/intern"
	"github.com/101shaan/Bract/internal/lower"
	"github.com/101shaan/Bract/internal/pipeline"
	"github.com/101shaan/Bract/internal/resolver"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		maxParallel = flag.Int("max-parallel", 0, "cap concurrent per-function workers (0 = GOMAXPROCS)")
		verbose     = flag.Bool("verbose", false, "print BIR and lowered IR for every function")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("bractc %s (%s)\n", version, commit)
		return
	}

	if err := run(*maxParallel, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "bractc: %v\n", err)
		os.Exit(1)
	}
}

func run(maxParallel int, verbose bool) error {
	scopes := resolver.NewScopeTree()
	interner := intern.New()
	fns := demoModule(scopes, interner)

	compiler := pipeline.New(scopes, interner, pipeline.Config{MaxParallel: maxParallel})

	results, err := compiler.CompileModule(context.Background(), fns)
	if err != nil {
		return fmt.Errorf("internal compiler error: %w", err)
	}

	for _, r := range results {
		status := "ok"
		if r.Failed {
			status = "FAILED"
		}
		fmt.Printf("fn %s: %s (cycles=%d memory=%d allocations=%d stack=%d)\n",
			r.Name, status, r.Cost.Cycles, r.Cost.Memory, r.Cost.Allocations, r.Cost.Stack)

		if verbose && r.BIR != nil {
			fmt.Println(r.BIR.String())
		}
		if verbose && r.Lowered != nil {
			printLowered(r.Lowered)
		}
	}

	fatal := false
	for _, d := range compiler.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
		fatal = fatal || d.Level == diagnostic.LevelError
	}
	if fatal {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

func printLowered(fn *lower.Function) {
	fmt.Println(strings.TrimSpace(fn.String()))
}
