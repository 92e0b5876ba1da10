package errlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tvid/tvid/internal/cell"
)

func TestPushThenSnapshot(t *testing.T) {
	r := New()
	r.Push("hello", cell.Color{}, cell.Color{})
	got := r.Snapshot()
	if assert.Len(t, got, 1) {
		assert.Equal(t, "hello", got[0].Message)
	}
}

func TestEvictionAfterTTL(t *testing.T) {
	r := New()
	r.mu.Lock()
	r.entries = append(r.entries, Entry{At: time.Now().Add(-ttl - time.Second), Message: "stale"})
	r.mu.Unlock()

	r.Push("fresh", cell.Color{}, cell.Color{})
	got := r.Snapshot()
	if assert.Len(t, got, 1) {
		assert.Equal(t, "fresh", got[0].Message)
	}
}

func TestWriterFeedsRing(t *testing.T) {
	r := New()
	w := Writer{Ring: r}
	n, err := w.Write([]byte("log line"))
	assert.NoError(t, err)
	assert.Equal(t, len("log line"), n)
	assert.Len(t, r.Snapshot(), 1)
}
