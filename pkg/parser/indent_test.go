package parser_test

import (
	"testing"

	"github.com/t-wilkinson/zortex/pkg/parser"
)

// drive feeds one line start to the tracker and collects every event it
// produces for that line.
func drive(t *testing.T, tr *parser.IndentTracker, count int) []parser.IndentEvent {
	t.Helper()

	var events []parser.IndentEvent
	for {
		ev, _ := tr.Next(count)
		if ev == parser.IndentNone {
			return events
		}
		events = append(events, ev)
		if len(events) > parser.DefaultMaxIndentDepth*2 {
			t.Fatal("tracker did not converge")
		}
	}
}

func TestIndentTracker_OpenClose(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()

	if got := drive(t, tr, 0); len(got) != 0 {
		t.Errorf("width 0 at base: expected no events, got %v", got)
	}
	if got := drive(t, tr, 2); len(got) != 1 || got[0] != parser.IndentOpen {
		t.Errorf("width 2: expected one open, got %v", got)
	}
	if got := drive(t, tr, 4); len(got) != 1 || got[0] != parser.IndentOpen {
		t.Errorf("width 4: expected one open, got %v", got)
	}
	if tr.Depth() != 3 || tr.Top() != 4 {
		t.Errorf("expected depth 3 top 4, got depth %d top %d", tr.Depth(), tr.Top())
	}

	if got := drive(t, tr, 2); len(got) != 1 || got[0] != parser.IndentClose {
		t.Errorf("back to 2: expected one close, got %v", got)
	}
	if got := drive(t, tr, 0); len(got) != 1 || got[0] != parser.IndentClose {
		t.Errorf("back to 0: expected one close, got %v", got)
	}
	if !tr.AtBase() {
		t.Error("expected base state after closing everything")
	}
}

func TestIndentTracker_MultiClose(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 2)
	drive(t, tr, 4)
	drive(t, tr, 6)

	// One line drops all three levels; the closes arrive one per call.
	events := drive(t, tr, 0)
	if len(events) != 3 {
		t.Fatalf("expected 3 closes, got %v", events)
	}
	for i, ev := range events {
		if ev != parser.IndentClose {
			t.Errorf("event %d: expected close, got %v", i, ev)
		}
	}
	if !tr.AtBase() {
		t.Error("expected base state")
	}
}

func TestIndentTracker_MisalignedRecovery(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 4)

	// Width 2 matches no open level: the level of width 4 closes, then a
	// synthesized level of width 2 opens.
	ev, flag := tr.Next(2)
	if ev != parser.IndentClose || flag != parser.IndentMisaligned {
		t.Fatalf("expected misaligned close, got ev=%v flag=%v", ev, flag)
	}
	ev, flag = tr.Next(2)
	if ev != parser.IndentOpen || flag != parser.IndentOK {
		t.Fatalf("expected synthesized open, got ev=%v flag=%v", ev, flag)
	}
	ev, _ = tr.Next(2)
	if ev != parser.IndentNone {
		t.Fatalf("expected settle, got %v", ev)
	}
	if tr.Depth() != 2 || tr.Top() != 2 {
		t.Errorf("expected depth 2 top 2, got depth %d top %d", tr.Depth(), tr.Top())
	}
}

func TestIndentTracker_Overflow(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTrackerWithDepth(2)
	drive(t, tr, 2)

	// The tracker is full: deeper lines keep the current level and flag it.
	ev, flag := tr.Next(4)
	if ev != parser.IndentNone || flag != parser.IndentOverflow {
		t.Errorf("expected overflow, got ev=%v flag=%v", ev, flag)
	}
	if tr.Depth() != 2 || tr.Top() != 2 {
		t.Errorf("overflow must not change the stack: depth %d top %d", tr.Depth(), tr.Top())
	}
}

func TestIndentTracker_CloseAll(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 2)
	drive(t, tr, 4)

	if n := tr.CloseAll(); n != 2 {
		t.Errorf("expected 2 closes, got %d", n)
	}
	if !tr.AtBase() {
		t.Error("expected base state after CloseAll")
	}
	if n := tr.CloseAll(); n != 0 {
		t.Errorf("CloseAll at base: expected 0, got %d", n)
	}
}
