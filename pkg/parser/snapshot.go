package parser

import (
	"encoding/binary"
	"errors"
)

// Snapshot binary layout, little-endian:
//
//	u16 depth
//	u16 pendingDedents
//	depth × u16 indent widths
//
// A reader that receives fewer bytes than depth requires resets to the base
// state instead of reading out of bounds.

// ErrCorruptSnapshot is returned by Restore when a snapshot cannot be
// decoded. The tracker is reset to its base state in that case, so parsing
// can continue; callers surface the condition as a diagnostic.
var ErrCorruptSnapshot = errors.New("corrupt scanner snapshot")

const snapshotHeaderLen = 4

// Serialize encodes the tracker state.
func (t *IndentTracker) Serialize() []byte {
	buf := make([]byte, snapshotHeaderLen+2*len(t.stack))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(t.stack)))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(t.pendingDedents))
	for i, width := range t.stack {
		binary.LittleEndian.PutUint16(buf[snapshotHeaderLen+2*i:], uint16(width))
	}
	return buf
}

// Restore replaces the tracker state with a previously serialized one.
// Truncated or over-deep snapshots reset the tracker to the base state and
// return ErrCorruptSnapshot.
func (t *IndentTracker) Restore(buf []byte) error {
	if len(buf) < snapshotHeaderLen {
		t.Reset()
		return ErrCorruptSnapshot
	}

	depth := int(binary.LittleEndian.Uint16(buf[0:2]))
	pending := int(binary.LittleEndian.Uint16(buf[2:4]))

	if depth < 1 || depth > DefaultMaxIndentDepth {
		t.Reset()
		return ErrCorruptSnapshot
	}
	if len(buf) < snapshotHeaderLen+2*depth {
		t.Reset()
		return ErrCorruptSnapshot
	}

	stack := make([]int, depth)
	for i := range stack {
		stack[i] = int(binary.LittleEndian.Uint16(buf[snapshotHeaderLen+2*i:]))
	}

	// The stack must be strictly increasing from a zero base; anything else
	// is a snapshot from a different document or a corrupted one.
	if stack[0] != 0 {
		t.Reset()
		return ErrCorruptSnapshot
	}
	for i := 1; i < depth; i++ {
		if stack[i] <= stack[i-1] {
			t.Reset()
			return ErrCorruptSnapshot
		}
	}

	t.stack = stack
	t.pendingDedents = pending
	t.pendingOpen = -1
	return nil
}
