package pipeline

import (
	"sync"

	"github.com/101shaan/Bract/internal/ast"
	"github.com/101shaan/Bract/internal/bir"
	"github.com/101shaan/Bract/internal/types"
)

// monomorphKeyFor derives a function's monomorphization cache key from its
// own parameter types ("monomorphization cache key =
// (fn_id, [arg_types_with_strategy])"). A non-generic function's key still
// participates in the same cache, keyed by its own symbol and concrete
// parameter types, so a function shared by two call sites with identical
// argument strategies is built once.
func monomorphKeyFor(fn *ast.FunctionDecl) types.MonomorphKey {
	argTypes := make([]*ast.Type, len(fn.Params))
	for i, p := range fn.Params {
		argTypes[i] = p.Type
	}
	return types.NewMonomorphKey(fn.Symbol, argTypes)
}

// entry holds one cache slot: either a finished function or a channel the
// first caller closes once building completes, so concurrent callers for
// the same key wait instead of duplicating work (:
// "Monomorphization cache: concurrent map keyed by (fn_id, arg_tuple);
// first-inserter-wins, others wait on a future").
type entry struct {
	done chan struct{}
	fn   *bir.Function
	err  error
}

// MonomorphCache is a concurrent, first-inserter-wins cache of built BIR
// functions keyed by MonomorphKey.
type MonomorphCache struct {
	mu      sync.Mutex
	entries map[types.MonomorphKey]*entry
}

// NewMonomorphCache creates an empty cache.
func NewMonomorphCache() *MonomorphCache {
	return &MonomorphCache{entries: make(map[types.MonomorphKey]*entry)}
}

// GetOrBuild returns the cached BIR function for key, building it via
// build exactly once even under concurrent callers: the first caller for a
// given key runs build and publishes the result; every other caller for
// the same key blocks on the first caller's channel instead of re-running
// build (singleflight semantics).
func (c *MonomorphCache) GetOrBuild(key types.MonomorphKey, build func() (*bir.Function, error)) (*bir.Function, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.fn, e.err
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.fn, e.err = build()
	close(e.done)
	return e.fn, e.err
}
