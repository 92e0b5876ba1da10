// Package decode implements the demux/decode driver (spec §4.4, C10):
// opens a container, routes decoded units to per-stream queues, and
// feeds the audio/video stages' mailboxes under bounded buffering, with
// subtitle events pushed directly into the subtitle store. Grounded on
// the teacher's ffmpeg-subprocess pattern (audio/ffmpegbase.go) and on
// HackTVLive/hacktvlive/source/capture.go's exec.Command("ffmpeg", ...)
// + io.ReadFull pump, via github.com/u2takey/ffmpeg-go (SPEC_FULL.md
// §2.1).
package decode

import (
	"time"

	"github.com/tvid/tvid/internal/audio"
	"github.com/tvid/tvid/internal/subtitle"
	"github.com/tvid/tvid/internal/video"
)

// SubtitleEvent is one decoded subtitle unit (spec §6's Rect::{None,
// Bitmap, Text, Ass}); Nothing reports the stream's "no current rect"
// marker that closes any open subtitle entry (spec §4.4 step 4).
type SubtitleEvent struct {
	Nothing bool
	Bitmap  bool // decoded but never drawn (spec §9 open question)
	Entry   *subtitle.Entry
}

// Source is the codec library contract (spec §6), reduced to the unit
// the ffmpeg-subprocess adapter can actually produce: fully decoded
// frames rather than raw packets plus separate decoders (subprocess
// ffmpeg already performs that decode internally — see DESIGN.md for
// why the packet-level contract is modeled one level up from spec.md's
// literal wording).
type Source interface {
	// Open starts the demux/decode pipeline for uri.
	Open(uri string) error
	Duration() time.Duration
	HasAudio() bool
	HasVideo() bool

	// ReadVideoFrame blocks until a frame is available, io.EOF-equivalent
	// (ok=false, err=nil) at stream end, or an error on decode failure.
	ReadVideoFrame() (frame *video.Frame, ok bool, err error)
	ReadAudioFrame() (frame *audio.Frame, ok bool, err error)
	ReadSubtitleEvent() (event *SubtitleEvent, ok bool, err error)

	Close() error
}
