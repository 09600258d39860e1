// Package parser implements the Zortex parser: an indentation scanner, a
// single-pass lexer, and recursive-descent block and inline grammars. The
// parser always produces a tree; anomalies surface as diagnostics, never as
// errors.
package parser

// DefaultMaxIndentDepth is the maximum number of simultaneously open
// indentation levels, matching the scanner's snapshot format (u16 widths).
const DefaultMaxIndentDepth = 128

// IndentEvent is the synthetic token produced for a line start.
type IndentEvent uint8

// Indent events. IndentNone means the line stays at the current level.
const (
	IndentNone IndentEvent = iota
	IndentOpen
	IndentClose
)

// IndentFlag reports an anomaly observed while classifying a line start.
type IndentFlag uint8

// Indent flags accompanying an event.
const (
	// IndentOK: nothing unusual.
	IndentOK IndentFlag = iota

	// IndentMisaligned: the width matched no open level; a new level was
	// synthesized above the nearest smaller one.
	IndentMisaligned

	// IndentOverflow: the maximum depth was reached and the new level was
	// dropped.
	IndentOverflow
)

// IndentTracker converts leading-space counts at line starts into
// IndentOpen/IndentClose events. The stack of open widths is strictly
// increasing with stack[0] == 0; multiple closes produced by one line are
// queued and delivered one per call.
type IndentTracker struct {
	stack          []int
	pendingDedents int

	// pendingOpen is the width of a misaligned level to open once queued
	// closes drain, or -1. Only ever set between calls at one line start.
	pendingOpen int

	maxDepth int
}

// NewIndentTracker creates a tracker at the base state with the default
// maximum depth.
func NewIndentTracker() *IndentTracker {
	return NewIndentTrackerWithDepth(DefaultMaxIndentDepth)
}

// NewIndentTrackerWithDepth creates a tracker with a custom maximum depth.
// Depths below 1 fall back to the default.
func NewIndentTrackerWithDepth(maxDepth int) *IndentTracker {
	if maxDepth < 1 || maxDepth > DefaultMaxIndentDepth {
		maxDepth = DefaultMaxIndentDepth
	}
	return &IndentTracker{
		stack:       []int{0},
		pendingOpen: -1,
		maxDepth:    maxDepth,
	}
}

// Reset returns the tracker to the base state {stack=[0], pending=0}.
func (t *IndentTracker) Reset() {
	t.stack = t.stack[:1]
	t.stack[0] = 0
	t.pendingDedents = 0
	t.pendingOpen = -1
}

// Depth returns the number of open indentation levels (always >= 1).
func (t *IndentTracker) Depth() int {
	return len(t.stack)
}

// Top returns the width of the innermost open level.
func (t *IndentTracker) Top() int {
	return t.stack[len(t.stack)-1]
}

// Pending returns the number of queued close events.
func (t *IndentTracker) Pending() int {
	return t.pendingDedents
}

// AtBase reports whether the tracker is in its base state.
func (t *IndentTracker) AtBase() bool {
	return len(t.stack) == 1 && t.pendingDedents == 0 && t.pendingOpen < 0
}

// Next classifies a non-blank line that starts with count leading spaces.
// Call it repeatedly at the same line start until it returns IndentNone:
// queued closes are delivered one per call before anything else. Blank
// lines must not be passed to Next at all.
func (t *IndentTracker) Next(count int) (IndentEvent, IndentFlag) {
	if t.pendingDedents > 0 {
		t.pendingDedents--
		return IndentClose, IndentOK
	}
	if t.pendingOpen >= 0 {
		width := t.pendingOpen
		t.pendingOpen = -1
		t.stack = append(t.stack, width)
		return IndentOpen, IndentOK
	}

	top := t.Top()

	switch {
	case count > top:
		// >= rather than ==: a restored snapshot may be deeper than this
		// tracker's configured cap.
		if len(t.stack) >= t.maxDepth {
			// Too deeply nested: drop the level, keep parsing the line as
			// if no new level were opened.
			return IndentNone, IndentOverflow
		}
		t.stack = append(t.stack, count)
		return IndentOpen, IndentOK

	case count == top:
		return IndentNone, IndentOK
	}

	// count < top: pop until the width fits.
	popped := 0
	for count < t.Top() && len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
		popped++
	}

	if count == t.Top() {
		t.pendingDedents = popped - 1
		return IndentClose, IndentOK
	}

	// Misaligned indentation: no open level has this width. Forgiving
	// recovery closes the popped levels, then synthesizes a level above the
	// nearest smaller one instead of failing the parse.
	t.pendingDedents = popped - 1
	t.pendingOpen = count
	return IndentClose, IndentMisaligned
}

// CloseAll pops every open level and drains the queue, returning the number
// of close events the caller must emit. Used to flush at end of input so
// opens and closes balance.
func (t *IndentTracker) CloseAll() int {
	n := t.pendingDedents + len(t.stack) - 1
	t.Reset()
	return n
}
