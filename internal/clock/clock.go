// Package clock implements the A/V clock (spec §4.1): a master/audio/video
// triple of nullable inner clocks, each tracking played time across pause
// and resume, with audio-priority drift correction.
//
// Grounded on the teacher's countingReader/monitor pattern in the
// "climp" player reference (position tracked as elapsed-since-anchor,
// frozen on pause) and on original_source/src/avsync.rs's inner-state
// state machine, ported from a Rust enum to an explicit running/paused
// struct.
package clock

import (
	"sync"
	"time"
)

// DriftThreshold is the maximum allowed divergence between the audio and
// video clocks before the sync clock is rebased (spec §3, §4.1).
const DriftThreshold = 20 * time.Millisecond

// inner models one of {sync, audio, video}: None -> running=false,set=false;
// Initialised(running) <-> Paused via the running flag.
type inner struct {
	set     bool
	running bool
	start   time.Time     // valid when running: start_anchor
	played  time.Duration // valid when paused, or as the frozen baseline
}

func (i *inner) played_(now time.Time) time.Duration {
	if !i.set {
		return 0
	}
	if i.running {
		return now.Sub(i.start)
	}
	return i.played
}

// seed sets played time t as of now, preserving the clock's run/pause mode.
func (i *inner) seed(now time.Time, t time.Duration, running bool) {
	i.set = true
	i.running = running
	if running {
		i.start = now.Add(-t)
	} else {
		i.played = t
	}
}

func (i *inner) pause(now time.Time) {
	if !i.set || !i.running {
		return
	}
	i.played = now.Sub(i.start)
	i.running = false
}

func (i *inner) resume(now time.Time) {
	if !i.set || i.running {
		return
	}
	i.start = now.Add(-i.played)
	i.running = true
}

// Clock is the process-wide A/V synchronization point (spec §4.1). All
// methods are safe for concurrent use; one mutex guards the triple of
// inner states plus the top-level fields, matching spec §5's "no lock
// held across a blocking call" rule (every method here is non-blocking).
type Clock struct {
	mu sync.Mutex

	duration  time.Duration
	paused    bool
	decodeEnd bool
	hasAudio  bool
	hasVideo  bool

	sync_ inner
	audio inner
	video inner
}

func New() *Clock {
	return &Clock{}
}

// Reset clears all inner states for a new playback session.
func (c *Clock) Reset(duration time.Duration, hasAudio, hasVideo bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = duration
	c.hasAudio = hasAudio
	c.hasVideo = hasVideo
	c.paused = false
	c.decodeEnd = false
	c.sync_ = inner{}
	c.audio = inner{}
	c.video = inner{}
}

// Pause freezes all three inner states at the current instant. Calling
// Pause when already paused is a no-op (idempotent, per spec §8 scenario 4).
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	now := time.Now()
	c.sync_.pause(now)
	c.audio.pause(now)
	c.video.pause(now)
	c.paused = true
}

// Resume rebases all three inner states to now. Idempotent when already running.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	now := time.Now()
	c.sync_.resume(now)
	c.audio.resume(now)
	c.video.resume(now)
	c.paused = false
}

// Toggle flips pause state.
func (c *Clock) Toggle() {
	c.mu.Lock()
	paused := c.paused
	c.mu.Unlock()
	if paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// HintAudioPlayed seeds the audio inner clock with played time t and ticks.
func (c *Clock) HintAudioPlayed(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.audio.seed(now, t, !c.paused)
	c.tickLocked(now)
}

// HintVideoPlayed seeds the video inner clock with played time t and ticks.
func (c *Clock) HintVideoPlayed(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.video.seed(now, t, !c.paused)
	c.tickLocked(now)
}

// HintSeeked seeds the sync clock directly (e.g. after a seek operation)
// and rebases audio/video to match, then ticks.
func (c *Clock) HintSeeked(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	running := !c.paused
	c.sync_.seed(now, t, running)
	if c.hasAudio {
		c.audio.seed(now, t, running)
	}
	if c.hasVideo {
		c.video.seed(now, t, running)
	}
	c.tickLocked(now)
}

// tickLocked performs drift correction: rebase sync to whichever of
// audio/video is present (tiebreak audio) when they diverge by more than
// DriftThreshold. No-op while paused or while neither audio nor video has
// been hinted; the first hint seeds the sync clock from that candidate.
func (c *Clock) tickLocked(now time.Time) {
	if c.paused {
		return
	}

	haveA, haveV := c.hasAudio && c.audio.set, c.hasVideo && c.video.set
	if !haveA && !haveV {
		return
	}

	// Whichever of audio/video is present is the candidate to rebase to;
	// audio wins the tiebreak when both exist (spec §4.1).
	var candidate time.Duration
	if haveA {
		candidate = c.audio.played_(now)
	} else {
		candidate = c.video.played_(now)
	}

	if !c.sync_.set {
		c.sync_.seed(now, candidate, true)
		return
	}

	master := c.sync_.played_(now)
	if diff(master, candidate) > DriftThreshold {
		c.sync_.seed(now, candidate, true)
	}
}

func diff(a, b time.Duration) time.Duration {
	if a > b {
		return a - b
	}
	return b - a
}

// PlayedTime is the master read (spec §4.1): Duration::ZERO if the sync
// clock is unset.
func (c *Clock) PlayedTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sync_.set {
		return 0
	}
	return c.sync_.played_(time.Now())
}

// PlaybackProgress is played/duration, 0 if duration is zero.
func (c *Clock) PlaybackProgress() float64 {
	c.mu.Lock()
	d := c.duration
	c.mu.Unlock()
	if d == 0 {
		return 0
	}
	return float64(c.PlayedTime()) / float64(d)
}

func (c *Clock) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *Clock) SetDecodeEnd(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodeEnd = v
}

func (c *Clock) DecodeEnd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decodeEnd
}
