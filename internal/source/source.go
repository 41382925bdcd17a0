// Package source provides file, position and span tracking shared
// read-heavy across the whole pipeline. The table is append-only and may
// be frozen once parsing completes.
package source

import "fmt"

// FileID identifies a source file. Zero is never a valid FileID.
type FileID uint32

// Position is a single point within a source file.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// IsValid reports whether p denotes a real location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// Span is a half-open byte range within a single file:
// (file_id, byte_start, byte_end).
type Span struct {
	File  FileID
	Start Position
	End   Position
}

// IsValid reports whether the span is well-formed.
func (s Span) IsValid() bool {
	return s.File != 0 && s.Start.IsValid() && s.End.IsValid() && s.Start.Offset <= s.End.Offset
}

// String renders "file:line:col-col" or "file:line:col-line:col".
func (s Span) String() string {
	name := "<unknown>"
	if s.File != 0 {
		name = fmt.Sprintf("file#%d", s.File)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", name, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", name, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains reports whether pos falls within s.
func (s Span) Contains(pos Position) bool {
	return s.IsValid() && pos.IsValid() && pos.Offset >= s.Start.Offset && pos.Offset < s.End.Offset
}

// File records a source file's name and content length, assigned a stable
// FileID on registration.
type File struct {
	Name string
	Size int
}

// SpanID is a stable handle into a Table, distinct from the Span value
// itself so that diagnostics can reference a span cheaply by ID.
type SpanID uint32

// Table is the append-only file and span registry. It is safe for
// concurrent reads once Freeze has been called; the registration methods
// are not safe for concurrent use with each other.
type Table struct {
	files  []File
	spans  []Span
	frozen bool
}

// NewTable creates an empty, writable span table.
func NewTable() *Table {
	return &Table{files: make([]File, 1), spans: make([]Span, 1)} // index 0 reserved
}

// AddFile registers a new source file and returns its FileID.
func (t *Table) AddFile(name string, size int) FileID {
	if t.frozen {
		panic("source: AddFile after Freeze")
	}
	t.files = append(t.files, File{Name: name, Size: size})
	return FileID(len(t.files) - 1)
}

// FileName resolves a FileID back to the registered name, or "" if unknown.
func (t *Table) FileName(id FileID) string {
	if int(id) <= 0 || int(id) >= len(t.files) {
		return ""
	}
	return t.files[id].Name
}

// RecordSpan appends a span and returns a stable SpanID for later lookup.
// This is idempotent in effect only in that re-recording an identical span
// is harmless; the table does not deduplicate.
func (t *Table) RecordSpan(start, end Position, file FileID) SpanID {
	if t.frozen {
		panic("source: RecordSpan after Freeze")
	}
	t.spans = append(t.spans, Span{File: file, Start: start, End: end})
	return SpanID(len(t.spans) - 1)
}

// Span resolves a SpanID to its recorded Span.
func (t *Table) Span(id SpanID) Span {
	if int(id) <= 0 || int(id) >= len(t.spans) {
		return Span{}
	}
	return t.spans[id]
}

// Freeze marks the table read-only. Safe to call from multiple goroutines
// after the resolver's single-threaded declaration pass completes.
func (t *Table) Freeze() { t.frozen = true }

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool { return t.frozen }

// Len returns the number of recorded spans (including the reserved zero slot).
func (t *Table) Len() int { return len(t.spans) }
