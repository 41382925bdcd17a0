package diagnostic

import (
	"testing"

	"github.com/101shaan/Bract/internal/source"
)

func spanAt(file source.FileID, offset int) source.Span {
	return source.Span{
		File:  file,
		Start: source.Position{Line: 1, Column: offset + 1, Offset: offset},
		End:   source.Position{Line: 1, Column: offset + 2, Offset: offset + 1},
	}
}

func TestBuilderBuildsDiagnostic(t *testing.T) {
	d := New().Error().Category(CategoryOwnership).Code("E_TEST").
		Message("value %q moved twice", "x").
		Span(spanAt(1, 5)).
		Note("see the first move").
		Suggest("remove the second use").
		Build()

	if d.Level != LevelError {
		t.Errorf("Level = %v, want LevelError", d.Level)
	}
	if d.Category != CategoryOwnership {
		t.Errorf("Category = %v, want CategoryOwnership", d.Category)
	}
	if d.Code != "E_TEST" {
		t.Errorf("Code = %q, want E_TEST", d.Code)
	}
	if d.Message != `value "x" moved twice` {
		t.Errorf("Message = %q, want formatted move message", d.Message)
	}
	if len(d.Notes) != 1 || len(d.Suggestions) != 1 {
		t.Fatalf("Notes=%v Suggestions=%v, want exactly one of each", d.Notes, d.Suggestions)
	}
}

func TestWorkerBufferHasErrors(t *testing.T) {
	sink := NewSink()
	w := sink.Worker("fn_a")
	w.Report(New().Warning().Message("just a warning").Build())
	if w.HasErrors() {
		t.Fatal("expected HasErrors to be false with only a warning buffered")
	}
	w.Report(New().Error().Message("a real problem").Build())
	if !w.HasErrors() {
		t.Fatal("expected HasErrors to be true once an error-level diagnostic is buffered")
	}
}

func TestSinkAllMergesInSpanOrder(t *testing.T) {
	sink := NewSink()

	wb := sink.Worker("fn_b")
	wb.Report(New().Error().Span(spanAt(1, 20)).Message("second").Build())
	wb.Flush()

	wa := sink.Worker("fn_a")
	wa.Report(New().Error().Span(spanAt(1, 5)).Message("first").Build())
	wa.Flush()

	all := sink.All()
	if len(all) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(all))
	}
	if all[0].Message != "first" || all[1].Message != "second" {
		t.Fatalf("order = [%q, %q], want [\"first\", \"second\"] by span offset", all[0].Message, all[1].Message)
	}
}

func TestSinkHasFatal(t *testing.T) {
	sink := NewSink()
	w := sink.Worker("fn_c")
	w.Report(New().Warning().Message("not fatal").Build())
	w.Flush()
	if sink.HasFatal() {
		t.Fatal("expected HasFatal to be false with only warnings reported")
	}

	w2 := sink.Worker("fn_d")
	w2.Report(New().Error().Message("fatal").Build())
	w2.Flush()
	if !sink.HasFatal() {
		t.Fatal("expected HasFatal to be true once an error diagnostic has been flushed")
	}
}

func TestWorkerFlushIsIdempotentPerKey(t *testing.T) {
	sink := NewSink()
	w := sink.Worker("fn_e")
	w.Report(New().Error().Message("first attempt").Build())
	w.Flush()

	// A retried analysis for the same function publishes a fresh buffer,
	// superseding the old one rather than accumulating duplicates.
	w2 := sink.Worker("fn_e")
	w2.Report(New().Info().Message("second attempt").Build())
	w2.Flush()

	all := sink.All()
	if len(all) != 1 || all[0].Message != "second attempt" {
		t.Fatalf("got %v, want exactly the second attempt's diagnostic", all)
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelError:   "error",
		LevelWarning: "warning",
		LevelInfo:    "info",
		LevelHint:    "hint",
	}
	for l, want := range cases {
		if got := l.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", l, got, want)
		}
	}
}
