package audio

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tvid/tvid/internal/clock"
	"github.com/tvid/tvid/internal/mailbox"
	"github.com/tvid/tvid/internal/stats"
)

// backpressureFactor is spec §4.2's "2 x last_device_chunk" threshold.
const backpressureFactor = 2

// Stage is the audio stage (C7): pulls decoded PCM from In, resamples to
// the device format, extends a producer buffer the device callback
// drains, and derives the master clock via Clock.HintAudioPlayed.
type Stage struct {
	In *mailbox.Mailbox[*Frame]

	Device Device
	Clock  *clock.Clock
	Stats  *stats.Counters
	Log    *log.Logger

	buf            *producerBuffer
	rs             resampler
	lastChunkLen   int
	playedSamples  int64
	quit           chan struct{}
}

func NewStage(in *mailbox.Mailbox[*Frame], dev Device, clk *clock.Clock, st *stats.Counters, logger *log.Logger) *Stage {
	return &Stage{
		In:     in,
		Device: dev,
		Clock:  clk,
		Stats:  st,
		Log:    logger,
		buf:    newProducerBuffer(),
		quit:   make(chan struct{}),
	}
}

// Run pulls frames until In closes or quit is requested, resampling each
// into the producer buffer with backpressure (spec §4.2).
func (s *Stage) Run(onDecoderWake func()) {
	for {
		frame, ok := s.In.Take()
		if !ok {
			s.drain()
			return
		}
		if onDecoderWake != nil {
			onDecoderWake()
		}

		key := resampleKey{
			srcChannels: frame.Channels,
			srcRate:     frame.Rate,
			dstChannels: s.Device.Channels(),
			dstRate:     s.Device.SampleRate(),
		}
		out := s.rs.run(frame.Samples, key)
		if len(out) == 0 {
			continue
		}

		if s.lastChunkLen > 0 {
			max := backpressureFactor * s.lastChunkLen
			s.buf.waitUntilBelow(max)
			select {
			case <-s.quit:
				s.drain()
				return
			default:
			}
		}
		s.buf.extend(out)
	}
}

// Quit requests shutdown; Run observes it at its next backpressure poll
// or mailbox close (spec §4.2: "on quit or end-of-stream, wake condvars,
// drain remaining audio synchronously until the buffer empties").
func (s *Stage) Quit() {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	s.buf.close() // wake any blocked backpressure wait
}

// RecentSamples returns the last n queued samples without consuming
// them, for the render loop's no-video volume-bar visualiser.
func (s *Stage) RecentSamples(n int) []float32 {
	return s.buf.peekTail(n)
}

// drain blocks until the device callback has consumed every queued
// sample (or Quit closes the buffer), then closes the buffer.
func (s *Stage) drain() {
	s.buf.waitUntilBelow(0)
	s.buf.close()
}

// Callback is the pull-mode output callback (spec §4.2): if paused, fill
// with device silence; else pop samples, counting underruns, and update
// played_samples + hint_audio_played_time (the sole clock authority
// whenever audio exists).
func (s *Stage) Callback(out []byte) {
	channels := s.Device.Channels()
	bytesPerSample := BytesPerSample(s.Device.Format())
	nSamples := len(out) / bytesPerSample
	s.lastChunkLen = nSamples

	if s.Clock.Paused() {
		FillSilence(out, s.Device.Format())
		return
	}

	f32 := make([]float32, nSamples)
	copied := s.buf.take(f32)
	underruns := nSamples - copied
	if underruns > 0 {
		s.Stats.AudioUnderruns.Add(int64(underruns))
	}

	encodeSamples(out, f32, s.Device.Format())

	s.playedSamples += int64(copied)
	s.Stats.PlayedSamples.Store(s.playedSamples)

	played := time.Duration(float64(s.playedSamples/int64(channels)) / float64(s.Device.SampleRate()) * float64(time.Second))
	s.Clock.HintAudioPlayed(played)
}

func encodeSamples(out []byte, samples []float32, f SampleFormat) {
	switch f {
	case FormatF32:
		for i, v := range samples {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case FormatF64:
		for i, v := range samples {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(float64(v)))
		}
	case FormatI16:
		for i, v := range samples {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*math.MaxInt16)))
		}
	case FormatU16:
		for i, v := range samples {
			u := uint16((v*0.5 + 0.5) * math.MaxUint16)
			binary.LittleEndian.PutUint16(out[i*2:], u)
		}
	}
}
