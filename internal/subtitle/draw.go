package subtitle

import (
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/framestore"
)

// Draw composites the active entries bottom-up starting at
// rows-1-padBottom (spec §4.7). t is the master playback time.
func Draw(rc *framestore.RenderContext, entries []*Entry, t time.Duration) {
	row := rc.Rows - 1 - rc.Padding.Bottom
	for _, e := range entries {
		if row < rc.Padding.Top {
			break // out of vertical space
		}
		drawOne(rc, e, t, row)
		row--
	}
}

func drawOne(rc *framestore.RenderContext, e *Entry, t time.Duration, row int) {
	kOut := FadeOut(t, e)
	shift := int(kOut * 5)
	drawRow := row - shift
	if drawRow < rc.Padding.Top || drawRow >= rc.Rows {
		return
	}

	width := 0
	for _, r := range e.Text {
		width += runewidth.RuneWidth(r)
	}
	startCol := rc.Padding.Left + (rc.Cols-rc.Padding.Left-rc.Padding.Right-width)/2

	col := startCol
	charIndex := 0
	for _, r := range e.Text {
		kIn := FadeIn(t, e.DisplayTime, charIndex)
		k := kIn * (1 - kOut)

		under := rc.At(col, drawRow)
		bg := cell.HalfHalf(under.FG, under.BG)
		fg := cell.Contrast(bg)
		textColor := cell.Mix(fg, bg, k)

		rc.Set(col, drawRow, cell.Cell{Glyph: r, FG: textColor, BG: bg})

		w := runewidth.RuneWidth(r)
		if w == 2 {
			rc.Set(col+1, drawRow, cell.Cell{Glyph: cell.Continuation, FG: textColor, BG: bg})
		}
		col += w
		charIndex++
	}
}
