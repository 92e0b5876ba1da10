// Package render implements the render loop (spec §4.6 drawing, §11,
// C11): drives ~30fps pacing, composites the video plane, subtitles, and
// UI into the frame store, and streams the resulting patch to the
// output queue. Grounded on the teacher's renderer.go draw-loop shape,
// retargeted from a GL draw call to cell-grid compositing.
package render

import (
	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/framestore"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/video"
)

// VideoPlane draws decoded video into the frame store's cell grid,
// optionally collapsing near-key-color pixels (spec §4.6).
type VideoPlane struct {
	ChromaKey       cell.Color
	ChromaEnabled   bool
	ChromaThreshold int
}

// Draw paints frame into rc at pad's offset, one glyph-less cell per two
// source pixel rows (spec §4.6). frame may be nil (no video decoded
// yet), in which case nothing is drawn and the caller falls back to the
// audio-only visualiser.
func (vp *VideoPlane) Draw(rc *framestore.RenderContext, frame *video.Rescaled, pad geometry.Padding) {
	if frame == nil {
		return
	}
	for cy := 0; cy < frame.H/2; cy++ {
		for cx := 0; cx < frame.W; cx++ {
			upper := readPixel(frame, cx, 2*cy)
			lower := readPixel(frame, cx, 2*cy+1)

			var out cell.Cell
			if vp.ChromaEnabled {
				out = vp.chromaCollapse(upper, lower)
			} else {
				out = cell.Cell{FG: lower, BG: upper}
			}
			rc.Set(pad.Left+cx, pad.Top+cy, out)
		}
	}
}

func (vp *VideoPlane) chromaCollapse(upper, lower cell.Color) cell.Cell {
	upperKey := similar(upper, vp.ChromaKey, vp.ChromaThreshold)
	lowerKey := similar(lower, vp.ChromaKey, vp.ChromaThreshold)
	switch {
	case upperKey && lowerKey:
		return cell.Cell{Glyph: ' ', FG: cell.Transparent(), BG: cell.Transparent()}
	case upperKey:
		return cell.Cell{FG: lower, BG: lower}
	case lowerKey:
		return cell.Cell{FG: upper, BG: upper}
	default:
		return cell.Cell{FG: lower, BG: upper}
	}
}

func similar(a, b cell.Color, threshold int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= threshold && d(a.G, b.G) <= threshold && d(a.B, b.B) <= threshold
}

func readPixel(frame *video.Rescaled, x, y int) cell.Color {
	i := y*frame.Stride + x*4
	if i+3 >= len(frame.RGBA) {
		return cell.Color{}
	}
	return cell.Color{R: frame.RGBA[i], G: frame.RGBA[i+1], B: frame.RGBA[i+2], A: frame.RGBA[i+3]}
}
