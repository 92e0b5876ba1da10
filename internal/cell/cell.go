package cell

import "github.com/mattn/go-runewidth"

// Continuation marks a cell as the trailing half of a double-width glyph.
// Such cells must never be drawn. It is not a valid rune (negative), so it
// can never collide with Glyph's zero value, which means "no explicit
// glyph" (rendered as HalfBlock) rather than "continuation slot".
const Continuation rune = -1

// HalfBlock is the glyph drawn for a glyph-less cell: fg = lower pixel,
// bg = upper pixel.
const HalfBlock = '▄'

// Cell is one terminal character position: an optional glyph plus a
// foreground and background color. Glyph == 0 means "no glyph", rendered
// as HalfBlock. Glyph == Continuation marks a non-drawable trailing slot
// for the preceding double-width glyph.
type Cell struct {
	Glyph rune
	FG    Color
	BG    Color
}

// IsContinuation reports whether c is a non-drawable trailing slot.
func (c Cell) IsContinuation() bool { return c.Glyph == Continuation }

// DrawGlyph returns the rune that should actually be emitted to the
// terminal for c: HalfBlock when no explicit glyph was set.
func (c Cell) DrawGlyph() rune {
	if c.Glyph == 0 {
		return HalfBlock
	}
	return c.Glyph
}

// Width returns the terminal column width of the cell's glyph (1 or 2).
// A continuation cell reports 0: it occupies no width of its own.
func (c Cell) Width() int {
	if c.IsContinuation() {
		return 0
	}
	if c.Glyph == 0 {
		return 1
	}
	w := runewidth.RuneWidth(c.Glyph)
	if w <= 0 {
		return 1
	}
	return w
}

// Equal reports whether two cells would render identically.
func (c Cell) Equal(o Cell) bool {
	return c.Glyph == o.Glyph && c.FG == o.FG && c.BG == o.BG
}

// Blank returns a fully transparent glyph-less cell, used to clear the
// working grid at the start of each render cycle.
func Blank() Cell {
	return Cell{FG: Transparent(), BG: Transparent()}
}
