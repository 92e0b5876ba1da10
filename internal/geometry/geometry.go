// Package geometry holds the shared, atomically-readable terminal/video
// sizing state (spec §3 "Geometry state"). Grounded on the sizing
// arithmetic in the "ansi_video_renderer"/"climp" reference renderers
// (nearest-fit aspect correction against a half-block cell grid), recast
// here as a letterbox/pillarbox derivation that scales in float64 and
// truncates to whole cells.
package geometry

import "sync/atomic"

// CellSize is a terminal cell count (cols, rows) or a pixel size,
// depending on context.
type CellSize struct {
	X, Y int
}

// Padding is the leftover cell rows/columns split evenly around the
// scaled video rectangle.
type Padding struct {
	Top, Bottom, Left, Right int
}

// State is the shared geometry singleton. Every field is stored behind
// atomic.Value so any stage may read it lock-free. The front-end writes
// it (SetTermSize, SetOriginSize) and so does the video stage
// (SetOriginSize on each decoded frame); the render loop only reads it.
type State struct {
	termCells   atomic.Value // CellSize: terminal columns/rows
	termPixels  atomic.Value // CellSize: terminal xpixel/ypixel (0,0 if unknown)
	originPix   atomic.Value // CellSize: most recent decoded frame's (w,h); (0,0) = no video
	videoPixels atomic.Value // CellSize: target render size in half-pixel units
	padding     atomic.Value // Padding
	generation  atomic.Int64 // bumped on every change that should force a full redraw
}

func New() *State {
	s := &State{}
	s.termCells.Store(CellSize{})
	s.termPixels.Store(CellSize{})
	s.originPix.Store(CellSize{})
	s.videoPixels.Store(CellSize{})
	s.padding.Store(Padding{})
	return s
}

func (s *State) TermCells() CellSize   { return s.termCells.Load().(CellSize) }
func (s *State) TermPixels() CellSize  { return s.termPixels.Load().(CellSize) }
func (s *State) OriginPixels() CellSize { return s.originPix.Load().(CellSize) }
func (s *State) VideoPixels() CellSize { return s.videoPixels.Load().(CellSize) }
func (s *State) Padding() Padding      { return s.padding.Load().(Padding) }
func (s *State) Generation() int64     { return s.generation.Load() }

// cellPixelAspect returns the pixel size of one terminal cell, falling
// back to 8x16 if the terminal never reported term_pixels.
func cellPixelAspect(termCells, termPixels CellSize) (xp, yp float64) {
	if termPixels.X == 0 || termPixels.Y == 0 || termCells.X == 0 || termCells.Y == 0 {
		return 8, 16
	}
	return float64(termPixels.X) / float64(termCells.X), float64(termPixels.Y) / float64(termCells.Y)
}

// SetTermSize updates term_cells/term_pixels and recomputes video_pixels
// and padding against the last known origin size. Returns true if this
// change requires a forced full redraw (any relevant quantity changed).
func (s *State) SetTermSize(cells, pixels CellSize) bool {
	changed := s.TermCells() != cells || s.TermPixels() != pixels
	s.termCells.Store(cells)
	s.termPixels.Store(pixels)
	if changed {
		s.recompute()
	}
	return changed
}

// SetOriginSize updates the most recently decoded frame's pixel size.
// (0,0) means "no video" per spec §3.
func (s *State) SetOriginSize(w, h int) bool {
	sz := CellSize{w, h}
	changed := s.OriginPixels() != sz
	s.originPix.Store(sz)
	if changed {
		s.recompute()
	}
	return changed
}

// recompute derives video_pixels and padding from term_cells, the cell
// pixel aspect, and origin size, and bumps the generation counter that
// forces a full redraw. The fit is computed in float64 and truncated to
// whole cells; it is not an integer-only computation.
func (s *State) recompute() {
	cells := s.TermCells()
	origin := s.OriginPixels()
	s.generation.Add(1)

	if cells.X == 0 || cells.Y == 0 || origin.X == 0 || origin.Y == 0 {
		s.videoPixels.Store(CellSize{})
		s.padding.Store(Padding{})
		return
	}

	xp, yp := cellPixelAspect(cells, s.TermPixels())

	// Each terminal cell is xp physical pixels wide and yp tall, and holds
	// two stacked half-block "video pixel" rows, so one video-pixel row is
	// yp/2 physical pixels tall. video_pixels.X is measured in video-pixel
	// columns (1 per terminal column), video_pixels.Y in video-pixel rows
	// (2 per terminal row). Scale the origin box to the largest (vw,vh)
	// that fits inside (cols, 2*rows) while matching the origin's aspect
	// ratio once both sides are expressed in physical pixels.
	ratio := (float64(origin.X) * yp) / (float64(origin.Y) * 2 * xp) // target vw/vh

	maxW, maxH := float64(cells.X), float64(cells.Y*2)
	var vwF, vhF float64
	if ratio <= 0 {
		vwF, vhF = maxW, maxH
	} else if maxW/ratio <= maxH {
		vwF = maxW
		vhF = maxW / ratio
	} else {
		vhF = maxH
		vwF = maxH * ratio
	}

	vw := int(vwF)
	vh := int(vhF)
	if vw > cells.X {
		vw = cells.X
	}
	if vh > cells.Y*2 {
		vh = cells.Y * 2
	}
	if vw < 1 {
		vw = 1
	}
	if vh < 1 {
		vh = 1
	}

	leftoverCols := cells.X - vw
	leftoverRows := cells.Y - (vh+1)/2

	pad := Padding{
		Left:  leftoverCols / 2,
		Right: leftoverCols - leftoverCols/2,
		Top:   leftoverRows / 2,
	}
	pad.Bottom = leftoverRows - pad.Top

	s.videoPixels.Store(CellSize{vw, vh})
	s.padding.Store(pad)
}
