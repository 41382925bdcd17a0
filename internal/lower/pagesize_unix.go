//go:build linux || darwin || freebsd

package lower

import "golang.org/x/sys/unix"

// hostPageSize queries the running host's page size, used to size region
// bump-allocator growth requests: a Region-strategy Allocate becomes a bump
// allocation against the region's current page, growing via a runtime
// region-grow call on overflow.
func hostPageSize() uint64 {
	return uint64(unix.Getpagesize())
}
