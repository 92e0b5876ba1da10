package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMixEndpoints(t *testing.T) {
	fg := Color{R: 255, G: 0, B: 0, A: 255}
	bg := Color{R: 0, G: 0, B: 255, A: 255}
	assert.Equal(t, bg, Mix(fg, bg, 0))
	assert.Equal(t, fg, Mix(fg, bg, 1))
}

func TestContrastThreshold(t *testing.T) {
	assert.Equal(t, Color{255, 255, 255, 255}, Contrast(Color{R: 10, G: 10, B: 10, A: 255}))
	assert.Equal(t, Color{0, 0, 0, 255}, Contrast(Color{R: 200, G: 200, B: 200, A: 255}))
}

func TestContinuationNeverDrawn(t *testing.T) {
	c := Cell{Glyph: Continuation}
	assert.True(t, c.IsContinuation())
	assert.Equal(t, 0, c.Width())
}

func TestZeroValueGlyphIsNotContinuation(t *testing.T) {
	c := Cell{FG: Color{R: 1, A: 255}, BG: Color{B: 1, A: 255}}
	assert.False(t, c.IsContinuation())
	assert.Equal(t, HalfBlock, c.DrawGlyph())
	assert.Equal(t, 1, c.Width())
}

func TestBlankIsTransparent(t *testing.T) {
	b := Blank()
	assert.Equal(t, Transparent(), b.FG)
	assert.Equal(t, Transparent(), b.BG)
}
