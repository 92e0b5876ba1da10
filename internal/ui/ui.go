// Package ui implements the HUD overlay (spec §4.8, C9): title/version,
// a hint line, the current URI, and the formatted master clock, drawn at
// fixed upper-left positions on top of the video plane. Grounded on the
// subtitle overlay's glyph-preserving compositing (internal/subtitle) and
// the teacher's renderer.go overlay ordering.
package ui

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/framestore"
)

const (
	Name    = "tvid"
	Version = "0.1.0"
)

// Overlay holds the HUD's mutable text fields; the front-end sets
// URI/Hint and the render loop calls Draw each frame.
type Overlay struct {
	Hint string
	URI  string
	// StatsLine is an optional extra line drawn below the clock; empty
	// hides it. The front-end's `l` binding toggles it between "" and
	// "playlist"; nothing writes counter values into it.
	StatsLine string
}

func New() *Overlay {
	return &Overlay{Hint: "space: pause  q: quit  n: skip  l: playlist  f: files"}
}

// Draw paints the HUD at rc's current playback time (spec §4.8).
func (o *Overlay) Draw(rc *framestore.RenderContext, played time.Duration) {
	row := rc.Padding.Top
	puts(rc, rc.Padding.Left, row, fmt.Sprintf("%s %s", Name, Version))
	row++
	if o.Hint != "" {
		puts(rc, rc.Padding.Left, row, o.Hint)
		row++
	}
	if o.URI != "" {
		puts(rc, rc.Padding.Left, row, o.URI)
		row++
	}
	puts(rc, rc.Padding.Left, row, FormatTime(played))
	row++
	if o.StatsLine != "" {
		puts(rc, rc.Padding.Left, row, o.StatsLine)
	}
}

// FormatTime renders d as "HHh MMm SSs mmmms" (spec §4.8).
func FormatTime(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	d -= sec * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02dh %02dm %02ds %03dms", h, m, sec, ms)
}

// puts draws s starting at (x,y), preserving the video pixel underneath
// any glyph-less cell: a cell with no glyph keeps halfhalf(fg,bg) as its
// background and uses the terminal default foreground for the drawn
// glyph, so the HUD stays readable over video without choosing its own
// background (spec §4.8).
func puts(rc *framestore.RenderContext, x, y int, s string) {
	col := x
	for _, r := range s {
		under := rc.At(col, y)
		bg := under.BG
		fg := cell.Contrast(bg)
		if under.Glyph == 0 {
			bg = cell.HalfHalf(under.FG, under.BG)
			fg = cell.DefaultFG
		}
		rc.Set(col, y, cell.Cell{Glyph: r, FG: fg, BG: bg})

		w := runewidth.RuneWidth(r)
		if w == 2 {
			rc.Set(col+1, y, cell.Cell{Glyph: cell.Continuation, FG: fg, BG: bg})
		}
		col += w
	}
}
