package source

import "testing"

func TestPositionIsValid(t *testing.T) {
	cases := []struct {
		pos  Position
		want bool
	}{
		{Position{Line: 1, Column: 1, Offset: 0}, true},
		{Position{Line: 0, Column: 1, Offset: 0}, false},
		{Position{Line: 1, Column: 0, Offset: 0}, false},
		{Position{Line: 1, Column: 1, Offset: -1}, false},
	}
	for _, c := range cases {
		if got := c.pos.IsValid(); got != c.want {
			t.Errorf("Position%+v.IsValid() = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestSpanIsValidRequiresOrderedOffsets(t *testing.T) {
	start := Position{Line: 1, Column: 1, Offset: 5}
	end := Position{Line: 1, Column: 1, Offset: 3}
	s := Span{File: 1, Start: start, End: end}
	if s.IsValid() {
		t.Fatal("expected a span with end offset before start offset to be invalid")
	}
}

func TestSpanStringSingleLine(t *testing.T) {
	s := Span{
		File:  3,
		Start: Position{Line: 2, Column: 4, Offset: 10},
		End:   Position{Line: 2, Column: 8, Offset: 14},
	}
	want := "file#3:2:4-8"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSpanStringMultiLine(t *testing.T) {
	s := Span{
		File:  3,
		Start: Position{Line: 2, Column: 4, Offset: 10},
		End:   Position{Line: 4, Column: 1, Offset: 30},
	}
	want := "file#3:2:4-4:1"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{
		File:  1,
		Start: Position{Line: 1, Column: 1, Offset: 5},
		End:   Position{Line: 1, Column: 10, Offset: 15},
	}
	inside := Position{Line: 1, Column: 5, Offset: 10}
	outside := Position{Line: 1, Column: 20, Offset: 20}

	if !s.Contains(inside) {
		t.Error("expected span to contain an offset within its range")
	}
	if s.Contains(outside) {
		t.Error("expected span to not contain an offset outside its range")
	}
}

func TestTableAddFileAndRecordSpan(t *testing.T) {
	tbl := NewTable()
	f1 := tbl.AddFile("a.bract", 100)
	f2 := tbl.AddFile("b.bract", 200)

	if tbl.FileName(f1) != "a.bract" || tbl.FileName(f2) != "b.bract" {
		t.Fatalf("FileName(f1)=%q FileName(f2)=%q, want a.bract / b.bract", tbl.FileName(f1), tbl.FileName(f2))
	}

	id := tbl.RecordSpan(Position{Line: 1, Column: 1, Offset: 0}, Position{Line: 1, Column: 5, Offset: 4}, f1)
	span := tbl.Span(id)
	if span.File != f1 || span.Start.Offset != 0 || span.End.Offset != 4 {
		t.Fatalf("Span(id) = %+v, want File=%v Start.Offset=0 End.Offset=4", span, f1)
	}
}

func TestTableUnknownIDsReturnZeroValues(t *testing.T) {
	tbl := NewTable()
	if name := tbl.FileName(99); name != "" {
		t.Errorf("FileName(99) = %q, want empty for an unregistered file", name)
	}
	if sp := tbl.Span(99); sp != (Span{}) {
		t.Errorf("Span(99) = %+v, want zero value for an unrecorded span", sp)
	}
}

func TestTableFreezePanicsOnMutation(t *testing.T) {
	tbl := NewTable()
	tbl.Freeze()
	if !tbl.Frozen() {
		t.Fatal("expected Frozen() to report true after Freeze")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected AddFile after Freeze to panic")
		}
	}()
	tbl.AddFile("late.bract", 1)
}

func TestTableLenIncludesReservedSlot(t *testing.T) {
	tbl := NewTable()
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 for the reserved zero slot", tbl.Len())
	}
	tbl.RecordSpan(Position{Line: 1, Column: 1, Offset: 0}, Position{Line: 1, Column: 1, Offset: 0}, 1)
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after recording one span", tbl.Len())
	}
}
