//go:build !linux && !darwin && !freebsd

package lower

// hostPageSize falls back to the common 4KiB page size on targets where
// golang.org/x/sys has no narrow page-size query (e.g. windows, where the
// allocation granularity is queried through a different API entirely and
// is out of scope for this cross-compiling middle-end).
func hostPageSize() uint64 { return 4096 }
