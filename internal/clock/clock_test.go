package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayedTimeZeroWhenUnset(t *testing.T) {
	c := New()
	assert.Equal(t, time.Duration(0), c.PlayedTime())
}

func TestHintAudioDrivesMasterWhenOnlyAudio(t *testing.T) {
	c := New()
	c.Reset(0, true, false)
	c.HintAudioPlayed(500 * time.Millisecond)
	got := c.PlayedTime()
	assert.InDelta(t, float64(500*time.Millisecond), float64(got), float64(5*time.Millisecond))
}

func TestPauseIsIdempotent(t *testing.T) {
	c := New()
	c.Reset(0, true, false)
	c.HintAudioPlayed(1 * time.Second)
	c.Pause()
	p1 := c.PlayedTime()
	c.Pause()
	time.Sleep(5 * time.Millisecond)
	p2 := c.PlayedTime()
	assert.Equal(t, p1, p2)
}

func TestPauseFreezesPlayedTime(t *testing.T) {
	c := New()
	c.Reset(0, true, false)
	c.HintAudioPlayed(1 * time.Second)
	c.Pause()
	p1 := c.PlayedTime()
	time.Sleep(10 * time.Millisecond)
	p2 := c.PlayedTime()
	assert.Equal(t, p1, p2)
}

func TestDriftCorrectionRebasesToAudio(t *testing.T) {
	c := New()
	c.Reset(0, true, true)
	c.HintSeeked(0)
	c.HintVideoPlayed(100 * time.Millisecond)
	c.HintAudioPlayed(300 * time.Millisecond) // diverges by 200ms > 20ms threshold

	got := c.PlayedTime()
	require.InDelta(t, float64(300*time.Millisecond), float64(got), float64(5*time.Millisecond))
}

func TestDriftCorrectionRebasesToVideoWhenNoAudio(t *testing.T) {
	c := New()
	c.Reset(0, false, true)
	c.HintSeeked(0)
	c.HintVideoPlayed(250 * time.Millisecond)
	got := c.PlayedTime()
	require.InDelta(t, float64(250*time.Millisecond), float64(got), float64(5*time.Millisecond))
}

func TestPlaybackProgress(t *testing.T) {
	c := New()
	c.Reset(2*time.Second, true, false)
	c.HintAudioPlayed(1 * time.Second)
	assert.InDelta(t, 0.5, c.PlaybackProgress(), 0.01)

	c2 := New()
	assert.Equal(t, 0.0, c2.PlaybackProgress())
}
