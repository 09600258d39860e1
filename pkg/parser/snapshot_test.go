package parser_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-wilkinson/zortex/pkg/parser"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 2)
	drive(t, tr, 4)

	buf := tr.Serialize()

	restored := parser.NewIndentTracker()
	require.NoError(t, restored.Restore(buf))
	assert.Equal(t, tr.Depth(), restored.Depth())
	assert.Equal(t, tr.Top(), restored.Top())
	assert.Equal(t, buf, restored.Serialize())
}

func TestSnapshot_Layout(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 3)

	buf := tr.Serialize()
	require.Len(t, buf, 4+2*2)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[0:2]), "depth")
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[2:4]), "pending")
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[4:6]), "base width")
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(buf[6:8]), "level width")
}

func TestSnapshot_PendingPreserved(t *testing.T) {
	t.Parallel()

	tr := parser.NewIndentTracker()
	drive(t, tr, 2)
	drive(t, tr, 4)
	drive(t, tr, 6)

	// Deliver the first close of three; two stay queued.
	ev, _ := tr.Next(0)
	require.Equal(t, parser.IndentClose, ev)
	require.Equal(t, 2, tr.Pending())

	restored := parser.NewIndentTracker()
	require.NoError(t, restored.Restore(tr.Serialize()))
	assert.Equal(t, 2, restored.Pending())
}

func TestSnapshot_CorruptResets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"truncated header", []byte{1}},
		{"zero depth", mkSnapshot(0, 0)},
		{"over-deep", mkSnapshot(500, 0)},
		{"missing widths", []byte{3, 0, 0, 0, 0, 0}},
		{"nonzero base", mkSnapshot(1, 0, 5)},
		{"non-increasing widths", mkSnapshot(3, 0, 0, 4, 2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tr := parser.NewIndentTracker()
			drive(t, tr, 2)

			err := tr.Restore(tc.buf)
			require.ErrorIs(t, err, parser.ErrCorruptSnapshot)
			assert.True(t, tr.AtBase(), "corrupt restore must reset to base")
		})
	}
}

func TestSnapshot_RestoreDeeperThanConfigured(t *testing.T) {
	t.Parallel()

	// Snapshots validate against the format's maximum, not the tracker's
	// configured cap, so a restore can leave the stack over the cap. The
	// tracker must still refuse to grow.
	tr := parser.NewIndentTrackerWithDepth(2)
	require.NoError(t, tr.Restore(mkSnapshot(3, 0, 0, 2, 4)))
	require.Equal(t, 3, tr.Depth())

	ev, flag := tr.Next(6)
	assert.Equal(t, parser.IndentNone, ev)
	assert.Equal(t, parser.IndentOverflow, flag)
	assert.Equal(t, 3, tr.Depth())
}

// mkSnapshot builds a snapshot buffer with the given depth, pending count,
// and widths.
func mkSnapshot(depth, pending int, widths ...int) []byte {
	buf := make([]byte, 4+2*len(widths))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(depth))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(pending))
	for i, w := range widths {
		binary.LittleEndian.PutUint16(buf[4+2*i:], uint16(w))
	}
	return buf
}
