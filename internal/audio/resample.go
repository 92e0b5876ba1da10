package audio

// resampleKey identifies a lazily-built resampler (spec §4.2: "lazily
// constructs/replaces a resampler keyed by (input sample format, channel
// layout, rate)").
type resampleKey struct {
	srcChannels int
	srcRate     int
	dstChannels int
	dstRate     int
}

// resampler converts interleaved f32 PCM at (srcChannels, srcRate) to
// interleaved f32 PCM at (dstChannels, dstRate) using linear
// interpolation for rate conversion and simple duplication/averaging for
// channel-count conversion.
type resampler struct {
	key resampleKey
}

func (r *resampler) ensure(key resampleKey) {
	r.key = key
}

// run resamples src (interleaved, len a multiple of srcChannels) and
// returns interleaved f32 at dstChannels/dstRate.
func (r *resampler) run(src []float32, key resampleKey) []float32 {
	r.ensure(key)
	if key.srcChannels == 0 || len(src) == 0 {
		return nil
	}

	mixed := mixChannels(src, key.srcChannels, key.dstChannels)
	if key.srcRate == key.dstRate {
		return mixed
	}
	return linearResampleRate(mixed, key.dstChannels, key.srcRate, key.dstRate)
}

// mixChannels maps a frame with srcChannels per sample to dstChannels,
// downmixing by averaging or upmixing by duplicating the last channel.
func mixChannels(src []float32, srcChannels, dstChannels int) []float32 {
	if srcChannels == dstChannels {
		return src
	}
	frames := len(src) / srcChannels
	out := make([]float32, frames*dstChannels)
	for f := 0; f < frames; f++ {
		in := src[f*srcChannels : f*srcChannels+srcChannels]
		o := out[f*dstChannels : f*dstChannels+dstChannels]
		if dstChannels < srcChannels {
			var sum float32
			for _, v := range in {
				sum += v
			}
			avg := sum / float32(srcChannels)
			for c := range o {
				o[c] = avg
			}
		} else {
			for c := range o {
				if c < len(in) {
					o[c] = in[c]
				} else {
					o[c] = in[len(in)-1]
				}
			}
		}
	}
	return out
}

// linearResampleRate resamples an interleaved multi-channel buffer from
// srcRate to dstRate via linear interpolation between adjacent frames.
func linearResampleRate(src []float32, channels, srcRate, dstRate int) []float32 {
	if channels == 0 || srcRate == 0 {
		return nil
	}
	srcFrames := len(src) / channels
	if srcFrames == 0 {
		return nil
	}
	ratio := float64(srcRate) / float64(dstRate)
	dstFrames := int(float64(srcFrames) / ratio)
	out := make([]float32, dstFrames*channels)

	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) * ratio
		i0 := int(srcPos)
		if i0 >= srcFrames-1 {
			i0 = srcFrames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		frac := float32(srcPos - float64(i0))
		for c := 0; c < channels; c++ {
			a := src[i0*channels+c]
			b := a
			if i0+1 < srcFrames {
				b = src[(i0+1)*channels+c]
			}
			out[i*channels+c] = a + (b-a)*frac
		}
	}
	return out
}
