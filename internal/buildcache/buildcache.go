// Package buildcache fingerprints the typed AST and the BIR module of each
// function for incremental reuse across compiler invocations, invalidating
// entries on source-file change. Modeled on Orizon's internal/runtime/vfs
// fsnotify watcher.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Fingerprint is a stable digest of one function's typed-AST + BIR
// contribution to the cache.
type Fingerprint string

// Hash hashes src (typically a canonical textual form of a function's
// typed AST and lowered BIR) into a stable Fingerprint.
func Hash(src []byte) Fingerprint {
	sum := sha256.Sum256(src)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Entry is one cached function's last-known-good fingerprint.
type Entry struct {
	Function    string
	Fingerprint Fingerprint
}

// Cache maps source file -> function name -> fingerprint, invalidated
// whole-file on any fsnotify write/remove/rename event for that file.
type Cache struct {
	mu      sync.RWMutex
	byFile  map[string]map[string]Fingerprint
	watcher *fsnotify.Watcher
	closeCh chan struct{}
}

// New creates a cache and starts watching dir for changes. Call Close when
// done to stop the background watcher goroutine.
func New(dir string) (*Cache, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	c := &Cache{
		byFile:  make(map[string]map[string]Fingerprint),
		watcher: w,
		closeCh: make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

func (c *Cache) watch() {
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				c.invalidateFile(ev.Name)
			}
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// Close stops the watcher.
func (c *Cache) Close() error {
	close(c.closeCh)
	return c.watcher.Close()
}

// Put records fn's fingerprint within file, superseding any prior value.
func (c *Cache) Put(file, fn string, fp Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byFile[file] == nil {
		c.byFile[file] = make(map[string]Fingerprint)
	}
	c.byFile[file][fn] = fp
}

// Get returns fn's cached fingerprint within file, if any file-change
// event hasn't invalidated it since.
func (c *Cache) Get(file, fn string) (Fingerprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fns, ok := c.byFile[file]
	if !ok {
		return "", false
	}
	fp, ok := fns[fn]
	return fp, ok
}

func (c *Cache) invalidateFile(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byFile, file)
}
