package render

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/framestore"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/outqueue"
	"github.com/tvid/tvid/internal/stats"
	"github.com/tvid/tvid/internal/taskpool"
	"github.com/tvid/tvid/internal/video"
)

func newTestLoop(t *testing.T) (*Loop, *geometry.State, *clock.Clock, *outqueue.Queue) {
	t.Helper()
	store := framestore.New(taskpool.NewSerial())
	geo := geometry.New()
	geo.SetTermSize(geometry.CellSize{X: 4, Y: 2}, geometry.CellSize{})
	clk := clock.New()
	clk.Reset(time.Second, false, true)
	outq := outqueue.New()
	st := stats.New()
	l := NewLoop(store, geo, clk, outq, st, log.Default())
	return l, geo, clk, outq
}

func TestRunRendersAtLeastOneFrameThenQuits(t *testing.T) {
	l, _, _, outq := newTestLoop(t)
	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	l.Quit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run never returned after Quit")
	}
	assert.Greater(t, int(l.Stats.RenderedFrames.Load()), 0)
	assert.GreaterOrEqual(t, outq.Len(), 0)
}

func TestResizeMidStreamForcesFlushAndResizesGrid(t *testing.T) {
	l, geo, _, _ := newTestLoop(t)
	// The loop sizes the store from geometry before its first render.
	initial := geo.TermCells()
	l.Store.Resize(initial.X, initial.Y)
	l.Store.RenderFrame(0, 0, geo.Padding(), 0, 0)
	require.Equal(t, 4, l.Store.Cols())
	require.Equal(t, 2, l.Store.Rows())

	geo.SetTermSize(geometry.CellSize{X: 6, Y: 3}, geometry.CellSize{})
	// Simulate one loop iteration's resize-detection step.
	l.lastGeneration = -1
	if geo.Generation() != l.lastGeneration {
		l.lastGeneration = geo.Generation()
		cells := geo.TermCells()
		l.Store.Resize(cells.X, cells.Y)
	}

	assert.Equal(t, 6, l.Store.Cols())
	assert.Equal(t, 3, l.Store.Rows())
	_, forced := l.Store.RenderFrame(0, 0, geo.Padding(), 0, 0)
	assert.True(t, forced)
}

func TestVideoFrameDeliveredThroughMailboxIsDrawn(t *testing.T) {
	l, geo, _, _ := newTestLoop(t)
	l.HasVideo = true
	l.VideoPlane = &VideoPlane{}
	l.VideoIn = mailbox.New[*video.Rescaled]()
	white := make([]byte, 4*4*4)
	for i := range white {
		white[i] = 0xFF
	}
	l.VideoIn.Put(&video.Rescaled{W: 4, H: 4, Stride: 16, RGBA: white})

	if f, ok := l.VideoIn.TryTake(); ok {
		l.lastFrame = f
	}
	l.Store.Resize(4, 2)
	patch, _ := l.Store.RenderFrame(0, 0, geo.Padding(), 0, 0)
	assert.NotEmpty(t, patch)
	assert.Contains(t, string(patch), "\x1b[38;2;255;255;255m")
}
