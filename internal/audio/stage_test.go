package audio

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/stats"
)

type fakeDevice struct {
	channels, rate int
}

func (f *fakeDevice) Channels() int        { return f.channels }
func (f *fakeDevice) SampleRate() int       { return f.rate }
func (f *fakeDevice) Format() SampleFormat { return FormatF32 }
func (f *fakeDevice) Start(func([]byte)) error { return nil }
func (f *fakeDevice) Stop() error              { return nil }

func TestChannelLayoutMapping(t *testing.T) {
	cases := map[int]string{1: "mono", 2: "stereo", 8: "7.1"}
	for ch, want := range cases {
		got, err := ChannelLayout(ch)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ChannelLayout(9)
	assert.Error(t, err)
}

func TestCallbackAdvancesPlayedSamplesExactly(t *testing.T) {
	dev := &fakeDevice{channels: 2, rate: 48000}
	clk := clock.New()
	clk.Reset(time.Hour, true, false)
	st := stats.New()
	s := NewStage(mailbox.New[*Frame](), dev, clk, st, log.Default())

	s.buf.extend(make([]float32, 2000))
	out := make([]byte, 1000*4)
	s.Callback(out)

	assert.EqualValues(t, 1000, st.PlayedSamples.Load())
}

func TestCallbackFillsSilenceWhenPaused(t *testing.T) {
	dev := &fakeDevice{channels: 2, rate: 48000}
	clk := clock.New()
	clk.Reset(time.Hour, true, false)
	clk.Pause()
	st := stats.New()
	s := NewStage(mailbox.New[*Frame](), dev, clk, st, log.Default())

	out := make([]byte, 16)
	for i := range out {
		out[i] = 0xFF
	}
	s.Callback(out)
	for _, b := range out {
		assert.EqualValues(t, 0, b)
	}
}

func TestCallbackCountsUnderrunOnEmptyBuffer(t *testing.T) {
	dev := &fakeDevice{channels: 1, rate: 48000}
	clk := clock.New()
	clk.Reset(time.Hour, true, false)
	st := stats.New()
	s := NewStage(mailbox.New[*Frame](), dev, clk, st, log.Default())

	out := make([]byte, 40) // 10 samples requested, 0 available
	s.Callback(out)
	assert.EqualValues(t, 10, st.AudioUnderruns.Load())
	// An underrun must not advance played_samples past what was really
	// consumed, or the clock would run ahead of actual playback.
	assert.EqualValues(t, 0, st.PlayedSamples.Load())
}

func TestCallbackOnPartialUnderrunAdvancesOnlyRealSamples(t *testing.T) {
	dev := &fakeDevice{channels: 1, rate: 48000}
	clk := clock.New()
	clk.Reset(time.Hour, true, false)
	st := stats.New()
	s := NewStage(mailbox.New[*Frame](), dev, clk, st, log.Default())

	s.buf.extend(make([]float32, 4)) // only 4 of 10 requested samples available
	out := make([]byte, 40)
	s.Callback(out)

	assert.EqualValues(t, 6, st.AudioUnderruns.Load())
	assert.EqualValues(t, 4, st.PlayedSamples.Load())
}
