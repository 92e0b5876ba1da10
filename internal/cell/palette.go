package cell

// Default terminal foreground/background. The UI overlay uses DefaultFG
// as its glyph color over glyph-less (video) cells; padding cells are not
// painted with either.
var (
	DefaultFG = Color{R: 220, G: 220, B: 220, A: 255}
	DefaultBG = Transparent()
)

// Similar reports whether two colors are close enough to be treated as
// the same for chroma-key collapsing (C6 video plane drawing). Distance
// is measured in the 0-255 per-channel sRGB space, which is adequate for
// chroma-key purposes and avoids a second linearisation pass per pixel.
func Similar(a, b Color, threshold int) bool {
	d := func(x, y uint8) int {
		v := int(x) - int(y)
		if v < 0 {
			v = -v
		}
		return v
	}
	return d(a.R, b.R) <= threshold && d(a.G, b.G) <= threshold && d(a.B, b.B) <= threshold
}
