package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tvid/tvid/internal/errlog"
)

func TestRequestQuitIsIdempotentAndClosesDone(t *testing.T) {
	c := New(errlog.New())
	assert.False(t, c.Quitting())

	c.RequestQuit()
	c.RequestQuit() // must not panic on double close

	assert.True(t, c.Quitting())
	select {
	case <-c.Done():
	default:
		t.Fatal("Done() channel was not closed")
	}
}

func TestSupervisePanicRaisesQuitAndLogsEntry(t *testing.T) {
	ring := errlog.New()
	c := New(ring)

	c.Supervise("decode", func() {
		panic("boom")
	})

	assert.True(t, c.Quitting())
	entries := ring.Snapshot()
	if assert.Len(t, entries, 1) {
		assert.Contains(t, entries[0].Message, "decode")
		assert.Contains(t, entries[0].Message, "boom")
	}
}

func TestSuperviseWithoutPanicLeavesStateUntouched(t *testing.T) {
	ring := errlog.New()
	c := New(ring)
	ran := false

	c.Supervise("render", func() { ran = true })

	assert.True(t, ran)
	assert.False(t, c.Quitting())
	assert.Empty(t, ring.Snapshot())
}
