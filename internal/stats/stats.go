// Package stats holds the process-wide decode/render counters carried
// over from original_source/src/statistics.rs (dropped by the spec
// distillation, reintroduced per SPEC_FULL.md §3.1) and the counters the
// core spec itself requires (skipped_frames, played_samples).
package stats

import "sync/atomic"

// Counters is safe for concurrent use from every stage.
type Counters struct {
	SkippedFrames      atomic.Int64
	DecodedVideoFrames atomic.Int64
	DecodedAudioFrames atomic.Int64
	AudioUnderruns     atomic.Int64
	RenderedFrames     atomic.Int64
	PlayedSamples      atomic.Int64
}

func New() *Counters { return &Counters{} }
