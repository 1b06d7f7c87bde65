package ptyrun

import "testing"

func TestGetLineStreamsOutputThenEOF(t *testing.T) {
	h, err := New([]string{"printf", "one\ntwo\nthree"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Finish()

	var got []string
	for {
		line, ok := h.GetLine()
		if !ok {
			break
		}
		got = append(got, line)
	}

	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %v, want %d lines %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetLineReturnsFalseForever(t *testing.T) {
	h, err := New([]string{"true"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Finish()

	for i := 0; i < 2; i++ {
		if _, ok := h.GetLine(); ok {
			t.Fatalf("iteration %d: expected ok=false at or after EOF", i)
		}
	}
}

func TestNewFailsOnEmptyArgs(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty argument list")
	}
}

func TestFinishIdempotent(t *testing.T) {
	h, err := New([]string{"true"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("first Finish: %v", err)
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("second Finish: %v", err)
	}
}
