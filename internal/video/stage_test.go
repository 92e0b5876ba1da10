package video

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/stats"
)

func newTestStage() (*Stage, *mailbox.Mailbox[*Frame], *mailbox.Mailbox[*Rescaled], *clock.Clock, *stats.Counters) {
	in := mailbox.New[*Frame]()
	out := mailbox.New[*Rescaled]()
	geo := geometry.New()
	geo.SetTermSize(geometry.CellSize{X: 4, Y: 2}, geometry.CellSize{})
	geo.SetOriginSize(4, 4)
	clk := clock.New()
	clk.Reset(time.Hour, true, true)
	st := stats.New()
	return NewStage(in, out, geo, clk, st, log.Default()), in, out, clk, st
}

func TestLateFrameIsDroppedAndCounted(t *testing.T) {
	s, in, _, clk, st := newTestStage()
	clk.HintAudioPlayed(200 * time.Millisecond)

	go s.Run(nil)
	in.Put(&Frame{PTS: 0, W: 4, H: 4, Stride: 16, RGBA: make([]byte, 4*4*4)})

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, st.SkippedFrames.Load())
	s.Quit()
}

func TestPauseAfterDeliveryStallsUntilResume(t *testing.T) {
	s, in, out, clk, _ := newTestStage()
	clk.HintAudioPlayed(0)
	// Pausing before the first frame makes the stage stop right after
	// delivering it, instead of racing back to In.Take.
	clk.Pause()

	go s.Run(nil)
	in.Put(&Frame{PTS: 0, W: 4, H: 4, Stride: 16, RGBA: make([]byte, 4*4*4)})

	first, ok := out.Take()
	if !ok || first == nil {
		t.Fatal("first frame was never delivered")
	}

	in.Put(&Frame{PTS: 33 * time.Millisecond, W: 4, H: 4, Stride: 16, RGBA: make([]byte, 4*4*4)})

	// While paused, the stage must not pull the next frame from In: it
	// should sit in the mailbox unconsumed.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, in.Empty(), "stage pulled next frame while paused")

	clk.Resume()
	select {
	case v := <-takeAsync(out):
		assert.NotNil(t, v)
	case <-time.After(time.Second):
		t.Fatal("stage never resumed delivering frames after resume")
	}
	s.Quit()
}

func takeAsync(m *mailbox.Mailbox[*Rescaled]) <-chan *Rescaled {
	ch := make(chan *Rescaled, 1)
	go func() {
		v, _ := m.Take()
		ch <- v
	}()
	return ch
}

func TestOnTimeFrameIsDelivered(t *testing.T) {
	s, in, out, clk, st := newTestStage()
	clk.HintAudioPlayed(250 * time.Millisecond)

	go s.Run(nil)
	in.Put(&Frame{PTS: 250 * time.Millisecond, W: 4, H: 4, Stride: 16, RGBA: make([]byte, 4*4*4)})

	deliveredCh := make(chan *Rescaled, 1)
	go func() {
		v, _ := out.Take()
		deliveredCh <- v
	}()

	select {
	case v := <-deliveredCh:
		assert.NotNil(t, v)
		assert.EqualValues(t, 0, st.SkippedFrames.Load())
	case <-time.After(time.Second):
		t.Fatal("frame was never delivered")
	}
	s.Quit()
}
