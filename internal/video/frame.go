// Package video implements the video stage (spec §4.3, C6): pulls
// decoded frames from the decode driver's mailbox, drops late frames
// against the A/V clock, rescales on demand, and hands finished frames
// to the render loop through its own one-slot mailbox. Grounded on the
// teacher's renderer.go frame-pacing loop, retargeted from a GL texture
// upload to a bilinear CPU rescale (golang.org/x/image/draw, SPEC_FULL.md
// §2.1).
package video

import "time"

// Frame is one decoded, not-yet-rescaled video frame: packed RGBA with a
// known stride (spec §6 "Codec library contract").
type Frame struct {
	PTS    time.Duration
	W, H   int
	Stride int
	RGBA   []byte
}

// Rescaled is what the stage hands to the render loop: an RGBA plane at
// the current target size, still carrying its presentation time. The
// stage itself hints the clock with that time right after handing the
// frame over.
type Rescaled struct {
	PTS    time.Duration
	W, H   int
	Stride int
	RGBA   []byte
}
