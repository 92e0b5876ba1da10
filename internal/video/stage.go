package video

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/stats"
)

// lateThreshold is spec §4.3's "pts + 100ms < master" drop rule.
const lateThreshold = 100 * time.Millisecond

// nearThreshold is spec §4.3's "pts - master > 5ms" pacing-wait rule.
const nearThreshold = 5 * time.Millisecond

const nominalFrameInterval = 33 * time.Millisecond

// Stage is the video stage (C6): pulls decoded frames from In, drops
// late ones, rescales to the current geometry target, and delivers
// through Out. Run in its own goroutine via Run.
type Stage struct {
	In  *mailbox.Mailbox[*Frame]
	Out *mailbox.Mailbox[*Rescaled]

	Geometry *geometry.State
	Clock    *clock.Clock
	Stats    *stats.Counters
	Log      *log.Logger

	mu          sync.Mutex
	requestCond *sync.Cond
	requested   bool
	quit        bool

	rs rescaler
}

func NewStage(in *mailbox.Mailbox[*Frame], out *mailbox.Mailbox[*Rescaled], geo *geometry.State, clk *clock.Clock, st *stats.Counters, logger *log.Logger) *Stage {
	s := &Stage{In: in, Out: out, Geometry: geo, Clock: clk, Stats: st, Log: logger}
	s.requestCond = sync.NewCond(&s.mu)
	return s
}

// RequestFrame is called by the render loop to ask the stage to deliver
// its next frame (the pacing wait this wakes, spec §4.3/§5).
func (s *Stage) RequestFrame() {
	s.mu.Lock()
	s.requested = true
	s.requestCond.Broadcast()
	s.mu.Unlock()
}

// Quit wakes any blocked pacing wait so Run can observe shutdown.
func (s *Stage) Quit() {
	s.mu.Lock()
	s.quit = true
	s.requestCond.Broadcast()
	s.mu.Unlock()
}

// Run is the stage's goroutine body: pull, drop-if-late, pace, rescale,
// deliver, hint the clock. Exits when In closes or Quit is called.
func (s *Stage) Run(onDecoderWake func()) {
	for {
		frame, ok := s.In.Take()
		if !ok {
			return
		}
		if onDecoderWake != nil {
			onDecoderWake()
		}
		if frame.W <= 0 || frame.H <= 0 {
			continue
		}

		s.Geometry.SetOriginSize(frame.W, frame.H)

		if s.shouldDrop(frame.PTS) {
			s.Stats.SkippedFrames.Add(1)
			continue
		}

		if !s.waitForPacing(frame.PTS) {
			return // quitting
		}

		target := s.Geometry.VideoPixels()
		if target.X <= 0 || target.Y <= 0 {
			continue
		}
		out := s.rs.scale(frame.RGBA, frame.W, frame.H, frame.Stride, target.X, target.Y)
		out.PTS = frame.PTS

		if !s.Out.Put(&out) {
			return
		}
		s.Clock.HintVideoPlayed(frame.PTS)

		if !s.waitWhilePaused() {
			return // quitting
		}
	}
}

// waitWhilePaused blocks in nominalFrameInterval slices (spec §4.3) while
// playback is paused, waking early on RequestFrame. Returns false if the
// stage should exit (quit requested).
func (s *Stage) waitWhilePaused() bool {
	for s.Clock.Paused() {
		if !s.waitOnRequestOrTimeout(nominalFrameInterval) {
			return false
		}
	}
	return true
}

func (s *Stage) shouldDrop(pts time.Duration) bool {
	master := s.Clock.PlayedTime()
	return pts+lateThreshold < master
}

// waitForPacing blocks (spec §4.3) while pts is still more than
// nearThreshold ahead of master and playback isn't paused, waking on
// RequestFrame or a bounded timeout so a changed target size is
// re-checked. Returns false if the stage should exit (quit requested).
func (s *Stage) waitForPacing(pts time.Duration) bool {
	for {
		master := s.Clock.PlayedTime()
		remaining := pts - master
		if remaining <= nearThreshold || s.Clock.Paused() {
			return true
		}

		timeout := remaining
		if max := 2 * nominalFrameInterval; timeout > max {
			timeout = max
		}

		if !s.waitOnRequestOrTimeout(timeout) {
			return false
		}
	}
}

// waitOnRequestOrTimeout waits for RequestFrame, Quit, or the timeout,
// whichever comes first. Returns false only if Quit fired.
func (s *Stage) waitOnRequestOrTimeout(timeout time.Duration) bool {
	timedOut := make(chan struct{})
	stopTimer := make(chan struct{})
	go func() {
		select {
		case <-time.After(timeout):
			s.mu.Lock()
			s.requestCond.Broadcast()
			s.mu.Unlock()
			close(timedOut)
		case <-stopTimer:
		}
	}()

	s.mu.Lock()
	for !s.requested && !s.quit {
		select {
		case <-timedOut:
			s.mu.Unlock()
			close(stopTimer)
			return true
		default:
		}
		s.requestCond.Wait()
	}
	requested, quit := s.requested, s.quit
	s.requested = false
	s.mu.Unlock()
	close(stopTimer)
	return requested || !quit
}
