// Package intern provides identifier and string interning for the Bract
// compiler. Equality of two Ids implies byte-equality of
// the original strings; interning is idempotent.
package intern

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Id is an opaque key into the interner. Zero is never returned by Intern.
type Id uint32

// Interner is a monotonically-growing string table. Once assigned, an Id's
// string value is immutable. The zero value is usable.
//
// Identifiers are normalized to Unicode NFC before interning so that two
// source identifiers that are visually identical but encoded with
// different combining-character sequences resolve to the same Id — without
// this, "é" (U+00E9) and "é" would intern as distinct symbols despite
// being the same name to a programmer.
type Interner struct {
	mu      sync.RWMutex
	strings []string
	index   map[string]Id
	frozen  bool
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{
		strings: make([]string, 1), // index 0 reserved as the invalid Id
		index:   make(map[string]Id),
	}
}

// Intern normalizes and interns s, returning its stable Id. Safe for
// concurrent use.
func (in *Interner) Intern(s string) Id {
	norm := norm.NFC.String(s)

	in.mu.RLock()
	if id, ok := in.index[norm]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.index[norm]; ok {
		return id
	}
	if in.frozen {
		panic("intern: Intern after Freeze")
	}

	in.strings = append(in.strings, norm)
	id := Id(len(in.strings) - 1)
	in.index[norm] = id

	return id
}

// Resolve returns the interned string for id, or "" if id is unknown.
func (in *Interner) Resolve(id Id) string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if int(id) <= 0 || int(id) >= len(in.strings) {
		return ""
	}

	return in.strings[id]
}

// Freeze marks the interner read-only; subsequent Intern calls for unseen
// strings panic. Called once the resolver's single-threaded pass ends, after
// which reads are lock-free-safe across workers.
func (in *Interner) Freeze() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.frozen = true
}

// Len returns the number of distinct interned strings (excluding the
// reserved zero slot).
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	return len(in.strings) - 1
}
