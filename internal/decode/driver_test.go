package decode

import (
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvid/tvid/internal/audio"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/errlog"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/subtitle"
	"github.com/tvid/tvid/internal/video"
)

type fakeSource struct {
	mu          sync.Mutex
	videoFrames []*video.Frame
	audioFrames []*audio.Frame
}

func (f *fakeSource) Open(string) error     { return nil }
func (f *fakeSource) Duration() time.Duration { return time.Second }
func (f *fakeSource) HasAudio() bool        { return true }
func (f *fakeSource) HasVideo() bool        { return true }

func (f *fakeSource) ReadVideoFrame() (*video.Frame, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.videoFrames) == 0 {
		return nil, false, nil
	}
	v := f.videoFrames[0]
	f.videoFrames = f.videoFrames[1:]
	return v, true, nil
}

func (f *fakeSource) ReadAudioFrame() (*audio.Frame, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.audioFrames) == 0 {
		return nil, false, nil
	}
	a := f.audioFrames[0]
	f.audioFrames = f.audioFrames[1:]
	return a, true, nil
}

func (f *fakeSource) ReadSubtitleEvent() (*SubtitleEvent, bool, error) { return nil, false, nil }
func (f *fakeSource) Close() error                                    { return nil }

func TestDriverDeliversAllFramesThenExits(t *testing.T) {
	src := &fakeSource{
		videoFrames: []*video.Frame{{PTS: 0}, {PTS: 33 * time.Millisecond}},
		audioFrames: []*audio.Frame{{Channels: 2, Rate: 48000, Samples: []float32{0, 0}}},
	}
	videoOut := mailbox.New[*video.Frame]()
	audioOut := mailbox.New[*audio.Frame]()
	clk := clock.New()
	clk.Reset(time.Hour, true, true)

	d := NewDriver(src, videoOut, audioOut, subtitle.New(), clk, errlog.New(), log.Default())

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	var got []*video.Frame
	for i := 0; i < 2; i++ {
		v, ok := videoOut.Take()
		require.True(t, ok)
		got = append(got, v)
		d.NotifyConsumed()
	}
	assert.Len(t, got, 2)

	a, ok := audioOut.Take()
	require.True(t, ok)
	assert.NotNil(t, a)
	d.NotifyConsumed()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("driver never exited after stream end")
	}
}
