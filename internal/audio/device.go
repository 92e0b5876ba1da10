// Package audio implements the audio stage (spec §4.2, C7): resamples
// decoded PCM to the device format, fills a pull-mode output callback,
// and derives the master clock from samples consumed whenever audio is
// present. Grounded on the teacher's audio/microphone.go callback-stream
// pattern (SPEC_FULL.md §2.1), mirrored here as an **output** stream.
package audio

// SampleFormat enumerates the device sample formats spec §6 names.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatF64
	FormatI16
	FormatU16
)

// Device is the audio host contract (spec §6): a default output device
// with a queryable channel count, sample rate, and sample format, driven
// by repeated calls to its callback with a buffer to fill or silence.
type Device interface {
	Channels() int
	SampleRate() int
	Format() SampleFormat
	// Start begins calling cb with interleaved device-format sample
	// buffers (length a multiple of Channels()) until Stop is called.
	Start(cb func(out []byte)) error
	Stop() error
}

// BytesPerSample returns the device sample width in bytes for f.
func BytesPerSample(f SampleFormat) int {
	switch f {
	case FormatF64:
		return 8
	case FormatI16, FormatU16:
		return 2
	default:
		return 4
	}
}

// FillSilence overwrites out with the device's representation of silence
// (spec §6: "0 for signed/float, mid-scale for unsigned"), assuming out's
// length is a multiple of BytesPerSample(f).
func FillSilence(out []byte, f SampleFormat) {
	if f != FormatU16 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	for i := 0; i+1 < len(out); i += 2 {
		out[i] = 0x00
		out[i+1] = 0x80 // little-endian uint16(0x8000) == mid-scale
	}
}
