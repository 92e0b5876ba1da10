package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice implements Device as a pull-mode f32 output stream,
// mirrored from the callback-based open/start/stop shape in the
// teacher's audio/microphone.go (there used for input capture).
type PortAudioDevice struct {
	channels   int
	sampleRate int
	stream     *portaudio.Stream
}

// OpenDefaultOutput initializes portaudio and opens the default output
// device at the requested channel count/sample rate.
func OpenDefaultOutput(channels, sampleRate int) (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: portaudio init: %w", err)
	}
	return &PortAudioDevice{channels: channels, sampleRate: sampleRate}, nil
}

func (d *PortAudioDevice) Channels() int        { return d.channels }
func (d *PortAudioDevice) SampleRate() int       { return d.sampleRate }
func (d *PortAudioDevice) Format() SampleFormat { return FormatF32 }

// Start opens and starts the output stream; portaudio's callback
// receives a []float32 buffer it fills in place, which Start adapts to
// cb's []byte contract by reinterpreting 4 bytes per f32 sample.
func (d *PortAudioDevice) Start(cb func(out []byte)) error {
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		return fmt.Errorf("audio: default host api: %w", err)
	}
	params := portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
	params.Output.Channels = d.channels
	params.SampleRate = float64(d.sampleRate)

	callback := func(out []float32) {
		raw := make([]byte, len(out)*4)
		cb(raw)
		for i := range out {
			out[i] = bytesToFloat32(raw[i*4 : i*4+4])
		}
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("audio: start stream: %w", err)
	}
	d.stream = stream
	return nil
}

func (d *PortAudioDevice) Stop() error {
	if d.stream == nil {
		return nil
	}
	if err := d.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	return portaudio.Terminate()
}

func bytesToFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
