package render

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/framestore"
)

// Visualizer draws a centred horizontal volume bar when no video stream
// exists and audio is present (spec §4.6): "a centred horizontal bar
// whose filled height at column x equals vol(x)*0.8*H". Column volumes
// are sourced from a short FFT over the most recent audio window
// (SPEC_FULL.md §2.1) rather than a raw peak meter.
type Visualizer struct {
	BarColor cell.Color
}

// Draw renders the bar into the padded video region of rc using the most
// recent audio samples window.
func (v *Visualizer) Draw(rc *framestore.RenderContext, samples []float32, padTop, padBottom, padLeft, padRight int) {
	w := rc.Cols - padLeft - padRight
	h := rc.Rows - padTop - padBottom
	if w <= 0 || h <= 0 {
		return
	}

	cols := columnVolumes(samples, w)
	for x := 0; x < w; x++ {
		filled := int(cols[x] * 0.8 * float64(h))
		for y := 0; y < filled; y++ {
			row := padTop + h - 1 - y
			rc.Set(padLeft+x, row, cell.Cell{FG: v.BarColor, BG: v.BarColor})
		}
	}
}

// columnVolumes buckets samples into n columns and returns each bucket's
// normalized spectral magnitude in [0,1], via a real FFT over the whole
// window followed by per-column energy summation.
func columnVolumes(samples []float32, n int) []float64 {
	out := make([]float64, n)
	if len(samples) == 0 || n == 0 {
		return out
	}

	f64 := make([]float64, len(samples))
	for i, s := range samples {
		f64[i] = float64(s)
	}
	spectrum := fft.FFTReal(f64)

	bins := len(spectrum) / 2
	if bins == 0 {
		return out
	}
	binsPerCol := bins / n
	if binsPerCol < 1 {
		binsPerCol = 1
	}

	var maxMag float64
	mags := make([]float64, n)
	for c := 0; c < n; c++ {
		start := c * binsPerCol
		end := start + binsPerCol
		if end > bins {
			end = bins
		}
		var sum float64
		for b := start; b < end; b++ {
			sum += cmplx.Abs(spectrum[b])
		}
		mags[c] = sum
		if sum > maxMag {
			maxMag = sum
		}
	}
	if maxMag == 0 {
		return out
	}
	for c := range out {
		out[c] = mags[c] / maxMag
	}
	return out
}
