// Package framestore implements the double-buffered cell grid and
// differential ANSI encoder (spec §3 "Frame store", §4.5). Grounded on
// the "climp" video/renderer.go reference (half-block "▀"/"▄" emission,
// fg/bg color-sequence elision) and on the teacher's renderer.go render
// loop shape, retargeted from GL draw calls to escape-sequence emission.
package framestore

import (
	"fmt"
	"strings"

	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/geometry"
	"github.com/tvid/tvid/internal/taskpool"
)

// RenderContext is passed to every render callback (spec §4.5 step 2):
// video plane -> subtitles -> UI, in that fixed order.
type RenderContext struct {
	Grid    []cell.Cell // the "this" grid, sized Cols*Rows+1
	Cols    int
	Rows    int
	Padding geometry.Padding
	// CellPixelW/H are the physical pixel size hints of one terminal cell,
	// used by overlays that need to reason about glyph proportions.
	CellPixelW, CellPixelH float64
	PlaybackTime           float64 // seconds
	DeltaTime              float64 // seconds since previous render cycle
}

// Set writes a cell at (x,y), no-op if out of bounds.
func (rc *RenderContext) Set(x, y int, c cell.Cell) {
	if x < 0 || x >= rc.Cols || y < 0 || y >= rc.Rows {
		return
	}
	rc.Grid[y*rc.Cols+x] = c
}

// At reads the cell at (x,y); returns the zero Cell if out of bounds.
func (rc *RenderContext) At(x, y int) cell.Cell {
	if x < 0 || x >= rc.Cols || y < 0 || y >= rc.Rows {
		return cell.Cell{}
	}
	return rc.Grid[y*rc.Cols+x]
}

// RenderCallback draws into rc and returns nothing; order of registration
// is the composite order (spec §4.5: video plane -> subtitles -> UI).
type RenderCallback func(rc *RenderContext)

// Store holds the two equal-sized grids used for differential encoding.
type Store struct {
	this, last     []cell.Cell
	cols, rows     int
	forceFullFlush bool
	pool           *taskpool.Pool
	callbacks      []RenderCallback
}

// New creates an empty store; Resize must be called before the first
// render cycle.
func New(pool *taskpool.Pool) *Store {
	if pool == nil {
		pool = taskpool.New()
	}
	return &Store{pool: pool}
}

// AddCallback registers a render callback, appended after any existing
// callbacks (so registration order is composite order).
func (s *Store) AddCallback(cb RenderCallback) {
	s.callbacks = append(s.callbacks, cb)
}

// Resize re-allocates both grids to cols*rows+1 cells (the +1 sentinel
// lets the diff walker run one past the end branch-free) and arms a
// forced full redraw.
func (s *Store) Resize(cols, rows int) {
	if cols == s.cols && rows == s.rows && s.this != nil {
		return
	}
	s.cols, s.rows = cols, rows
	n := cols*rows + 1
	s.this = make([]cell.Cell, n)
	s.last = make([]cell.Cell, n)
	s.forceFullFlush = true
}

func (s *Store) Cols() int { return s.cols }
func (s *Store) Rows() int { return s.rows }

// ForceFullFlush arms a forced full redraw on the next RenderFrame call,
// e.g. when geometry's generation counter changes (spec §3).
func (s *Store) ForceFullFlush() { s.forceFullFlush = true }

// RenderFrame runs one full render cycle (spec §4.5): clear `this`,
// run callbacks in order, diff against `last`, and swap. It returns the
// escape-sequence patch to enqueue, and whether a forced full flush was
// armed for this cycle (the caller uses this to decide whether to clear
// the output queue before enqueueing, per spec §4.5 step 4).
func (s *Store) RenderFrame(playbackTime, deltaTime float64, pad geometry.Padding, cellPixelW, cellPixelH float64) (patch []byte, forcedFlush bool) {
	for i := range s.this {
		s.this[i] = cell.Blank()
	}

	rc := &RenderContext{
		Grid:         s.this,
		Cols:         s.cols,
		Rows:         s.rows,
		Padding:      pad,
		CellPixelW:   cellPixelW,
		CellPixelH:   cellPixelH,
		PlaybackTime: playbackTime,
		DeltaTime:    deltaTime,
	}
	for _, cb := range s.callbacks {
		cb(rc)
	}

	forcedFlush = s.forceFullFlush
	patch = s.diff(forcedFlush)
	s.forceFullFlush = false

	s.this, s.last = s.last, s.this
	return patch, forcedFlush
}

// diff walks `this` against `last` row-by-row in parallel (spec §4.5 step
// 3), one task per row via the shared pool, then concatenates the
// per-row buffers in row order. If full is true, every row is encoded as
// if `last` were entirely different (a full redraw).
func (s *Store) diff(full bool) []byte {
	rowBufs := make([][]byte, s.rows)
	s.pool.JoinAll(s.rows, func(row int) {
		rowBufs[row] = s.diffRow(row, full)
	})

	var out []byte
	out = append(out, escHome()...)
	for row := 0; row < s.rows; row++ {
		if row > 0 {
			out = append(out, escNextRow()...)
		}
		out = append(out, rowBufs[row]...)
	}
	return out
}

func escHome() []byte      { return []byte("\x1b[H") }
func escNextRow() []byte   { return []byte("\x1b[E") }

// diffRow encodes one row's patch. Unchanged spans become a single cursor-
// forward escape (run-length, spec §4.5), except a span that reaches the
// end of the row, which emits nothing since the next-row escape moves the
// cursor anyway; changed spans are printed as
// color-sequences + glyphs directly, since printing them is itself how
// the terminal "fills in" the run. Continuation cells never emit a glyph
// of their own; a double-width glyph's own cell is what advances the
// cursor two physical columns, so the continuation only consumes its
// array slot (spec: "double-width glyphs consume one cell of run-length").
func (s *Store) diffRow(row int, full bool) []byte {
	var b strings.Builder
	base := row * s.cols

	var lastFG, lastBG cell.Color
	haveColor := false

	col := 0
	for col < s.cols {
		cur := s.this[base+col]
		unchanged := !full && cur.Equal(s.last[base+col])

		if unchanged {
			j := col
			for j < s.cols && !full && s.this[base+j].Equal(s.last[base+j]) {
				j++
			}
			runLen := j - col
			if j == s.cols {
				// Trailing run: ESC[E (or end of patch) follows.
			} else if runLen == 1 {
				b.WriteString("\x1b[C")
			} else {
				fmt.Fprintf(&b, "\x1b[%dC", runLen)
			}
			col = j
			continue
		}

		j := col
		for j < s.cols {
			c := s.this[base+j]
			if !full && c.Equal(s.last[base+j]) {
				break
			}
			if !haveColor || c.FG != lastFG {
				writeColorSeq(&b, 38, c.FG)
				lastFG = c.FG
				haveColor = true
			}
			if c.BG != lastBG {
				writeColorSeq(&b, 48, c.BG)
				lastBG = c.BG
			}
			if !c.IsContinuation() {
				writeGlyph(&b, c.DrawGlyph())
			}
			j++
		}
		col = j
	}
	return []byte(b.String())
}

func writeColorSeq(b *strings.Builder, base int, c cell.Color) {
	fmt.Fprintf(b, "\x1b[%d;2;%d;%d;%dm", base, c.R, c.G, c.B)
}

func writeGlyph(b *strings.Builder, r rune) {
	b.WriteRune(r)
}
