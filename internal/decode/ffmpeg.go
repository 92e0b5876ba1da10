package decode

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/tvid/tvid/internal/audio"
	"github.com/tvid/tvid/internal/video"
)

// audioFrameSamples is the number of per-channel sample frames read per
// audio Frame handed to the audio stage (1024*channels interleaved f32
// values; spec §4.2's outputFrameSize analogue).
const audioFrameSamples = 1024

// FFmpegSource demuxes and decodes via an `ffmpeg` subprocess per stream
// (one rawvideo RGBA pipe, one f32le audio pipe), grounded on the
// teacher's audio/ffmpegbase.go subprocess-pipeline shape.
type FFmpegSource struct {
	probe probeResult

	videoCmd      *exec.Cmd
	videoOut      io.ReadCloser
	videoRowBytes int
	videoFrameCount int64

	audioCmd *exec.Cmd
	audioOut io.ReadCloser
}

type probeResult struct {
	DurationSeconds float64
	HasVideo        bool
	Width, Height   int
	HasAudio        bool
	SampleRate      int
	Channels        int
}

func NewFFmpegSource() *FFmpegSource { return &FFmpegSource{} }

func (f *FFmpegSource) Open(uri string) error {
	pr, err := probe(uri)
	if err != nil {
		return fmt.Errorf("decode: probe %s: %w", uri, err)
	}
	f.probe = pr

	if pr.HasVideo {
		cmd := ffmpeg.Input(uri).
			Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba", "r": nominalFPS}).
			Compile()
		out, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("decode: video stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("decode: start video ffmpeg: %w", err)
		}
		f.videoCmd, f.videoOut = cmd, out
		f.videoRowBytes = pr.Width * 4
	}

	if pr.HasAudio {
		cmd := ffmpeg.Input(uri).
			Output("pipe:", ffmpeg.KwArgs{"format": "f32le", "ac": pr.Channels, "ar": pr.SampleRate}).
			Compile()
		out, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("decode: audio stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("decode: start audio ffmpeg: %w", err)
		}
		f.audioCmd, f.audioOut = cmd, out
	}

	return nil
}

func (f *FFmpegSource) Duration() time.Duration {
	return time.Duration(f.probe.DurationSeconds * float64(time.Second))
}
func (f *FFmpegSource) HasAudio() bool { return f.probe.HasAudio }
func (f *FFmpegSource) HasVideo() bool { return f.probe.HasVideo }

// AudioChannels and AudioSampleRate expose the probed input format so
// the caller can size the output device to match (spec §4.2).
func (f *FFmpegSource) AudioChannels() int   { return f.probe.Channels }
func (f *FFmpegSource) AudioSampleRate() int { return f.probe.SampleRate }

// VideoSize exposes the probed frame dimensions so the caller can seed
// geometry's origin size before the first decoded frame arrives.
func (f *FFmpegSource) VideoSize() (width, height int) {
	return f.probe.Width, f.probe.Height
}

// nominalFPS is the output frame rate the video pipe is asked for (-r).
// ffmpeg's rawvideo pipe carries no timestamps of its own, so a video
// frame's pts is frame_index / nominalFPS. Audio frames carry no pts.
var nominalFPS = 30.0

func (f *FFmpegSource) ReadVideoFrame() (*video.Frame, bool, error) {
	if f.videoOut == nil {
		return nil, false, nil
	}
	buf := make([]byte, f.videoRowBytes*f.probe.Height)
	n, err := io.ReadFull(f.videoOut, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("decode: read video frame: %w", err)
	}
	f.videoFrameCount++
	pts := time.Duration(float64(f.videoFrameCount-1) / nominalFPS * float64(time.Second))
	_ = n
	return &video.Frame{
		PTS:    pts,
		W:      f.probe.Width,
		H:      f.probe.Height,
		Stride: f.videoRowBytes,
		RGBA:   buf,
	}, true, nil
}

func (f *FFmpegSource) ReadAudioFrame() (*audio.Frame, bool, error) {
	if f.audioOut == nil {
		return nil, false, nil
	}
	buf := make([]byte, audioFrameSamples*f.probe.Channels*4)
	n, err := io.ReadFull(f.audioOut, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if n == 0 {
			return nil, false, nil
		}
		buf = buf[:n]
	} else if err != nil {
		return nil, false, fmt.Errorf("decode: read audio frame: %w", err)
	}

	samples := make([]float32, len(buf)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(buf[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return &audio.Frame{Channels: f.probe.Channels, Rate: f.probe.SampleRate, Samples: samples}, true, nil
}

// ReadSubtitleEvent is unimplemented for the subprocess adapter: ffmpeg's
// raw-pipe mode carries no subtitle stream, so this adapter never yields
// a subtitle event.
func (f *FFmpegSource) ReadSubtitleEvent() (*SubtitleEvent, bool, error) {
	return nil, false, nil
}

func (f *FFmpegSource) Close() error {
	if f.videoOut != nil {
		f.videoOut.Close()
	}
	if f.videoCmd != nil && f.videoCmd.Process != nil {
		f.videoCmd.Process.Kill()
		f.videoCmd.Wait()
	}
	if f.audioOut != nil {
		f.audioOut.Close()
	}
	if f.audioCmd != nil && f.audioCmd.Process != nil {
		f.audioCmd.Process.Kill()
		f.audioCmd.Wait()
	}
	return nil
}

// probe shells out to ffprobe (bundled with any ffmpeg install) for
// duration and the first video/audio stream's parameters.
func probe(uri string) (probeResult, error) {
	data, err := ffmpeg.Probe(uri)
	if err != nil {
		return probeResult{}, err
	}

	var doc struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType  string `json:"codec_type"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return probeResult{}, fmt.Errorf("decode: parse probe json: %w", err)
	}

	pr := probeResult{}
	if d, err := strconv.ParseFloat(doc.Format.Duration, 64); err == nil {
		pr.DurationSeconds = d
	}
	for _, st := range doc.Streams {
		switch st.CodecType {
		case "video":
			if !pr.HasVideo {
				pr.HasVideo, pr.Width, pr.Height = true, st.Width, st.Height
			}
		case "audio":
			if !pr.HasAudio {
				pr.HasAudio, pr.Channels = true, st.Channels
				if sr, err := strconv.Atoi(st.SampleRate); err == nil {
					pr.SampleRate = sr
				}
			}
		}
	}
	return pr, nil
}
