// Package diagnostic implements Bract's diagnostic reporting, adapted
// directly from the Orizon compiler's internal/diagnostic package: a
// builder-pattern Diagnostic type plus a Sink that merges per-worker
// diagnostics in span order.
package diagnostic

import (
	"fmt"
	"sort"
	"sync"

	"github.com/101shaan/Bract/internal/source"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelHint
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Category groups diagnostics by which pipeline stage produced them.
type Category int

const (
	CategoryResolution Category = iota
	CategoryType
	CategoryStrategy
	CategoryOwnership
	CategoryContract
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryResolution:
		return "resolution"
	case CategoryType:
		return "type"
	case CategoryStrategy:
		return "strategy"
	case CategoryOwnership:
		return "ownership"
	case CategoryContract:
		return "contract"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// TextEdit is a suggested source replacement.
type TextEdit struct {
	Span    source.Span
	NewText string
}

// Suggestion is a suggested fix.
type Suggestion struct {
	Title string
	Edits []TextEdit
}

// RelatedInfo carries a secondary span, e.g. "value moved here".
type RelatedInfo struct {
	Span    source.Span
	Message string
}

// Diagnostic is a single reported message.
type Diagnostic struct {
	Level       Level
	Category    Category
	Code        string
	Message     string
	PrimarySpan source.Span
	Secondary   []RelatedInfo
	Notes       []string
	Suggestions []Suggestion
	// StrategySuggestion, when non-empty, names a strategy swap suggestion
	// such as "switch Linear to Stack".
	StrategySuggestion string
}

// Builder constructs a Diagnostic with a fluent API.
type Builder struct {
	d *Diagnostic
}

// New starts building a diagnostic.
func New() *Builder { return &Builder{d: &Diagnostic{}} }

func (b *Builder) Error() *Builder    { b.d.Level = LevelError; return b }
func (b *Builder) Warning() *Builder  { b.d.Level = LevelWarning; return b }
func (b *Builder) Info() *Builder     { b.d.Level = LevelInfo; return b }
func (b *Builder) Hint() *Builder     { b.d.Level = LevelHint; return b }

func (b *Builder) Category(c Category) *Builder { b.d.Category = c; return b }
func (b *Builder) Code(code string) *Builder    { b.d.Code = code; return b }
func (b *Builder) Message(msg string, args ...interface{}) *Builder {
	b.d.Message = fmt.Sprintf(msg, args...)
	return b
}
func (b *Builder) Span(s source.Span) *Builder { b.d.PrimarySpan = s; return b }

func (b *Builder) Related(s source.Span, msg string, args ...interface{}) *Builder {
	b.d.Secondary = append(b.d.Secondary, RelatedInfo{Span: s, Message: fmt.Sprintf(msg, args...)})
	return b
}

func (b *Builder) Note(msg string, args ...interface{}) *Builder {
	b.d.Notes = append(b.d.Notes, fmt.Sprintf(msg, args...))
	return b
}

func (b *Builder) Suggest(title string, edits ...TextEdit) *Builder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Title: title, Edits: edits})
	return b
}

func (b *Builder) StrategySuggestion(s string) *Builder { b.d.StrategySuggestion = s; return b }

// Build finalizes the diagnostic.
func (b *Builder) Build() *Diagnostic { return b.d }

// String renders a single-line human-readable form.
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s[%s] %s: %s", d.Level, d.Code, d.PrimarySpan, d.Message)
}

// Sink collects diagnostics from many concurrent per-function workers
// and
// merges them in primary-span order in All.
type Sink struct {
	mu   sync.Mutex
	bufs map[string][]*Diagnostic
}

// NewSink creates an empty sink.
func NewSink() *Sink { return &Sink{bufs: make(map[string][]*Diagnostic)} }

// Worker returns a handle a single goroutine can append to without taking
// the sink's lock on every diagnostic; workerKey should be unique per
// function (e.g. its symbol name).
func (s *Sink) Worker(workerKey string) *WorkerBuffer {
	return &WorkerBuffer{sink: s, key: workerKey}
}

// WorkerBuffer buffers diagnostics for one function-analysis worker.
type WorkerBuffer struct {
	sink *Sink
	key  string
	buf  []*Diagnostic
}

// Report appends a diagnostic to this worker's local buffer.
func (w *WorkerBuffer) Report(d *Diagnostic) { w.buf = append(w.buf, d) }

// HasErrors reports whether any LevelError diagnostic has been buffered.
func (w *WorkerBuffer) HasErrors() bool {
	for _, d := range w.buf {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// Flush publishes this worker's buffer into the sink, replacing any prior
// buffer for the same key (idempotent under re-analysis/retry).
func (w *WorkerBuffer) Flush() {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.bufs[w.key] = w.buf
}

// All returns every diagnostic merged and sorted by primary span order:
// diagnostics are collected per-function and merged by span order in the
// final report.
func (s *Sink) All() []*Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Diagnostic
	for _, b := range s.bufs {
		out = append(out, b...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PrimarySpan, out[j].PrimarySpan
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Start.Offset < b.Start.Offset
	})

	return out
}

// HasFatal reports whether any error-level diagnostic was reported, used
// by the driver to decide the process exit code.
func (s *Sink) HasFatal() bool {
	for _, d := range s.All() {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}
