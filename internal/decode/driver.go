package decode

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tvid/tvid/internal/audio"
	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/errlog"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/subtitle"
	"github.com/tvid/tvid/internal/video"
)

// wakeupTimeout is spec §4.4 step 3's 50ms decoder-wakeup short-wait
// (SPEC_FULL.md §9: kept as a flat 50ms rather than tied to the nominal
// frame interval, per the unresolved open question — see DESIGN.md).
const wakeupTimeout = 50 * time.Millisecond

// queueDepth bounds each internal packet/frame queue (spec §4.4).
const queueDepth = 8

// Driver is the decode driver (C10): opens Source, routes decoded units
// into bounded queues, and feeds the audio/video stage mailboxes.
type Driver struct {
	Source   Source
	VideoOut *mailbox.Mailbox[*video.Frame]
	AudioOut *mailbox.Mailbox[*audio.Frame]
	Subs     *subtitle.Store
	Clock    *clock.Clock
	Errors   *errlog.Ring
	Log      *log.Logger

	mu       sync.Mutex
	wakeCond *sync.Cond
	quit     bool

	videoQueue []*video.Frame
	audioQueue []*audio.Frame
	videoEOF   bool
	audioEOF   bool
	subsEOF    bool
}

func NewDriver(src Source, videoOut *mailbox.Mailbox[*video.Frame], audioOut *mailbox.Mailbox[*audio.Frame], subs *subtitle.Store, clk *clock.Clock, errors *errlog.Ring, logger *log.Logger) *Driver {
	d := &Driver{Source: src, VideoOut: videoOut, AudioOut: audioOut, Subs: subs, Clock: clk, Errors: errors, Log: logger}
	d.wakeCond = sync.NewCond(&d.mu)
	return d
}

// NotifyConsumed wakes the decoder-wakeup condvar; stages call this after
// taking a frame from their mailbox (spec §4.4 step 3).
func (d *Driver) NotifyConsumed() {
	d.mu.Lock()
	d.wakeCond.Broadcast()
	d.mu.Unlock()
}

// Quit stops the run loop at its next check.
func (d *Driver) Quit() {
	d.mu.Lock()
	d.quit = true
	d.wakeCond.Broadcast()
	d.mu.Unlock()
}

func (d *Driver) quitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quit
}

// Run is the decode driver's goroutine body, implementing spec §4.4's
// loop. Exits on quit, stream end, or error; poisons both mailboxes and
// closes the Source on the way out. The subtitle store is left as it is;
// Run does not clear it.
func (d *Driver) Run() {
	defer d.shutdown()

	for !d.quitting() {
		videoReady := len(d.videoQueue) > 0 && d.VideoOut.Empty()
		audioReady := len(d.audioQueue) > 0 && d.AudioOut.Empty()

		if videoReady {
			d.deliverVideo()
			continue
		}
		if audioReady {
			d.deliverAudio()
			continue
		}

		if len(d.videoQueue) > 0 && len(d.audioQueue) > 0 {
			d.waitForWakeup()
			continue
		}

		if !d.readNext() {
			return
		}
	}
}

func (d *Driver) deliverVideo() {
	f := d.videoQueue[0]
	d.videoQueue = d.videoQueue[1:]
	if !d.VideoOut.Put(f) {
		d.mu.Lock()
		d.quit = true
		d.mu.Unlock()
	}
}

func (d *Driver) deliverAudio() {
	f := d.audioQueue[0]
	d.audioQueue = d.audioQueue[1:]
	if !d.AudioOut.Put(f) {
		d.mu.Lock()
		d.quit = true
		d.mu.Unlock()
	}
}

func (d *Driver) waitForWakeup() {
	done := make(chan struct{})
	go func() {
		select {
		case <-time.After(wakeupTimeout):
			d.mu.Lock()
			d.wakeCond.Broadcast()
			d.mu.Unlock()
		case <-done:
		}
	}()
	d.mu.Lock()
	d.wakeCond.Wait()
	d.mu.Unlock()
	close(done)
}

// readNext pulls one more decoded unit from Source and appends it to the
// matching queue, or (for subtitles) pushes directly into the subtitle
// store (spec §4.4 step 4). Returns false once every stream has reached
// end of stream with nothing left queued.
func (d *Driver) readNext() bool {
	if !d.videoEOF && len(d.videoQueue) < queueDepth {
		vf, ok, err := d.Source.ReadVideoFrame()
		if err != nil {
			d.logErr("video decode", err)
		} else if ok {
			d.videoQueue = append(d.videoQueue, vf)
			return true
		} else {
			d.videoEOF = true
		}
	}
	if !d.audioEOF && len(d.audioQueue) < queueDepth {
		af, ok, err := d.Source.ReadAudioFrame()
		if err != nil {
			d.logErr("audio decode", err)
		} else if ok {
			d.audioQueue = append(d.audioQueue, af)
			return true
		} else {
			d.audioEOF = true
		}
	}
	if !d.subsEOF {
		se, ok, err := d.Source.ReadSubtitleEvent()
		if err != nil {
			d.logErr("subtitle decode", err)
		} else if ok {
			d.handleSubtitle(se)
			return true
		} else {
			d.subsEOF = true
		}
	}

	if len(d.videoQueue) > 0 || len(d.audioQueue) > 0 {
		return true
	}
	return !(d.videoEOF && d.audioEOF && d.subsEOF)
}

func (d *Driver) handleSubtitle(se *SubtitleEvent) {
	now := d.Clock.PlayedTime()
	if se.Nothing {
		d.Subs.PushNothing(now)
		return
	}
	if se.Entry != nil {
		d.Subs.PushASS(se.Entry, now)
	}
}

func (d *Driver) logErr(component string, err error) {
	if d.Errors != nil {
		d.Errors.Push(component+": "+err.Error(), cell.Color{}, cell.Color{})
	}
	if d.Log != nil {
		d.Log.Error(component, "err", err)
	}
}

func (d *Driver) shutdown() {
	d.VideoOut.Close()
	d.AudioOut.Close()
	d.Source.Close()
}
