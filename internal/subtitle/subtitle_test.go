package subtitle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenEntryClosedOnNextPush(t *testing.T) {
	s := New()
	s.PushText(0, 0, "first", 0)
	s.PushText(10*time.Millisecond, 0, "second", 200*time.Millisecond)

	snap := s.Active(200 * time.Millisecond)
	require.Len(t, snap, 2)
	// The first entry should have been closed at the second push's `now`.
	var first *Entry
	for _, e := range snap {
		if e.Text == "first" {
			first = e
		}
	}
	require.NotNil(t, first)
	assert.Equal(t, 200*time.Millisecond, first.End)
}

func TestLingerEviction(t *testing.T) {
	s := New()
	s.PushText(0, 100*time.Millisecond, "bye", 0)

	// Still visible just before end+linger.
	visible := s.Active(100*time.Millisecond + linger - time.Millisecond)
	assert.Len(t, visible, 1)

	// Evicted once end+linger has passed.
	visible = s.Active(100*time.Millisecond + linger + time.Millisecond)
	assert.Len(t, visible, 0)
}

func TestFadeInClampedToUnitRange(t *testing.T) {
	assert.Equal(t, 0.0, FadeIn(0, 0, 0))
	assert.Equal(t, 1.0, FadeIn(500*time.Millisecond, 0, 0))
}

func TestFadeOutZeroWhileLive(t *testing.T) {
	e := &Entry{Start: 0, End: 0}
	assert.Equal(t, 0.0, FadeOut(time.Second, e))
}

func TestActiveSortsLiveFirstThenByDescendingEnd(t *testing.T) {
	s := New()
	s.PushText(0, 50*time.Millisecond, "older", 0)
	s.PushText(0, 100*time.Millisecond, "newer", 60*time.Millisecond)
	s.PushText(0, 0, "live", 0) // end == 0 leaves it open

	visible := s.Active(60 * time.Millisecond)
	require.True(t, len(visible) >= 1)
	require.Len(t, visible, 3)
	assert.Equal(t, "live", visible[0].Text)
	assert.Equal(t, "newer", visible[1].Text) // end 100ms
	assert.Equal(t, "older", visible[2].Text) // end 50ms
	// "live" (open) must sort first if present in this window.
	for i, e := range visible {
		if e.IsOpen() {
			assert.Equal(t, 0, i)
		}
	}
}

func TestParseASSDialogueSplitsOnFirstNineCommas(t *testing.T) {
	e, ok := ParseASSDialogue("0,0:00:01.00,0:00:02.50,Default,,0,0,0,,Hello, world")
	require.True(t, ok)
	assert.Equal(t, "Hello, world", e.Text)
	assert.Equal(t, time.Second, e.Start)
	assert.Equal(t, 2*time.Second+500*time.Millisecond, e.End)
}
