package render

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/framestore"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/outqueue"
	"github.com/tvid/tvid/internal/stats"
	"github.com/tvid/tvid/internal/subtitle"
	"github.com/tvid/tvid/internal/ui"
	"github.com/tvid/tvid/internal/video"
)

// targetFrameInterval is spec §5's "33ms - render_elapsed" render-loop
// pacing figure (~30fps).
const targetFrameInterval = 33 * time.Millisecond

// FrameRequester lets the loop ask the video stage for its next frame
// (implemented by video.Stage).
type FrameRequester interface {
	RequestFrame()
}

// Loop is the render loop (C11): the process-lifetime thread that drives
// frame pacing, resize handling, and the empty-frame audio visualiser.
type Loop struct {
	Store      *framestore.Store
	Geometry   *geometry.State
	Clock      *clock.Clock
	OutQueue   *outqueue.Queue
	Stats      *stats.Counters
	Log        *log.Logger

	VideoIn       *mailbox.Mailbox[*video.Rescaled]
	VideoRequest  FrameRequester
	Subs          *subtitle.Store
	UI            *ui.Overlay
	VideoPlane    *VideoPlane
	Visualizer    *Visualizer
	AudioSamples  func() []float32 // most recent audio window, for the visualiser

	HasVideo bool
	HasAudio bool

	lastGeneration int64
	lastFrame      *video.Rescaled
	quit           chan struct{}
}

func NewLoop(store *framestore.Store, geo *geometry.State, clk *clock.Clock, outq *outqueue.Queue, st *stats.Counters, logger *log.Logger) *Loop {
	l := &Loop{Store: store, Geometry: geo, Clock: clk, OutQueue: outq, Stats: st, Log: logger, quit: make(chan struct{})}
	store.AddCallback(l.drawVideo)
	store.AddCallback(l.drawSubtitles)
	store.AddCallback(l.drawUI)
	return l
}

func (l *Loop) Quit() {
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
}

// Run drives the ~30fps cycle until Quit is called (spec §5).
func (l *Loop) Run() {
	var lastCycle time.Time
	for {
		select {
		case <-l.quit:
			return
		default:
		}
		cycleStart := time.Now()

		if l.Geometry.Generation() != l.lastGeneration {
			l.lastGeneration = l.Geometry.Generation()
			geo := l.Geometry.TermCells()
			l.Store.Resize(geo.X, geo.Y)
		}

		if l.VideoRequest != nil {
			l.VideoRequest.RequestFrame()
		}
		if l.VideoIn != nil {
			if f, ok := l.VideoIn.TryTake(); ok {
				l.lastFrame = f
			}
		}

		played := l.Clock.PlayedTime()
		delta := 0.0
		if !lastCycle.IsZero() {
			delta = cycleStart.Sub(lastCycle).Seconds()
		}
		lastCycle = cycleStart
		patch, forced := l.Store.RenderFrame(played.Seconds(), delta, l.Geometry.Padding(), 0, 0)

		if forced || l.OutQueue.Len() > 3 {
			l.OutQueue.Clear()
		}
		l.OutQueue.Push(patch)
		l.Stats.RenderedFrames.Add(1)

		elapsed := time.Since(cycleStart)
		if remaining := targetFrameInterval - elapsed; remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-l.quit:
				return
			}
		}
	}
}

func (l *Loop) drawVideo(rc *framestore.RenderContext) {
	pad := l.Geometry.Padding()
	if l.HasVideo && l.lastFrame != nil {
		l.VideoPlane.Draw(rc, l.lastFrame, pad)
		return
	}
	if !l.HasVideo && l.HasAudio && l.Visualizer != nil && l.AudioSamples != nil {
		l.Visualizer.Draw(rc, l.AudioSamples(), pad.Top, pad.Bottom, pad.Left, pad.Right)
	}
}

func (l *Loop) drawSubtitles(rc *framestore.RenderContext) {
	if l.Subs == nil {
		return
	}
	t := l.Clock.PlayedTime()
	entries := l.Subs.Active(t)
	subtitle.Draw(rc, entries, t)
}

func (l *Loop) drawUI(rc *framestore.RenderContext) {
	if l.UI == nil {
		return
	}
	l.UI.Draw(rc, l.Clock.PlayedTime())
}
