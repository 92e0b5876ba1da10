package video

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// rescaleKey identifies a lazily-built rescaler (spec §4.3: "Maintain a
// lazily-constructed rescaler keyed by (input pixfmt, input w, input h,
// target w, target h)"). Pixel format is fixed to RGBA in this port (the
// ffmpeg adapter always requests -pix_fmt rgba), so the key collapses to
// the four dimensions.
type rescaleKey struct {
	srcW, srcH, dstW, dstH int
}

// rescaler holds the cached key plus scratch destination image; it is
// regenerated whenever any key element differs (spec §4.3).
type rescaler struct {
	key rescaleKey
	dst *image.NRGBA
}

func (r *rescaler) ensure(key rescaleKey) {
	if r.key == key && r.dst != nil {
		return
	}
	r.key = key
	r.dst = image.NewNRGBA(image.Rect(0, 0, key.dstW, key.dstH))
}

// scale rescales src (packed RGBA, given stride) to (dstW, dstH) using
// bilinear interpolation, returning a packed RGBA buffer with stride
// dstW*4.
func (r *rescaler) scale(src []byte, srcW, srcH, stride, dstW, dstH int) Rescaled {
	r.ensure(rescaleKey{srcW, srcH, dstW, dstH})

	srcImg := &rgbaView{pix: src, stride: stride, w: srcW, h: srcH}
	xdraw.BiLinear.Scale(r.dst, r.dst.Bounds(), srcImg, srcImg.Bounds(), draw.Over, nil)

	return Rescaled{W: dstW, H: dstH, Stride: r.dst.Stride, RGBA: r.dst.Pix}
}

// rgbaView wraps a raw packed-RGBA buffer (as handed back by the ffmpeg
// adapter) as an image.Image without copying, so the scaler can read it
// directly (spec §9 "keep the unsafe cast encapsulated inside the
// rescaler adapter").
type rgbaView struct {
	pix    []byte
	stride int
	w, h   int
}

func (v *rgbaView) ColorModel() color.Model { return color.NRGBAModel }
func (v *rgbaView) Bounds() image.Rectangle { return image.Rect(0, 0, v.w, v.h) }
func (v *rgbaView) At(x, y int) color.Color {
	i := y*v.stride + x*4
	if i+3 >= len(v.pix) {
		return color.NRGBA{}
	}
	return color.NRGBA{R: v.pix[i], G: v.pix[i+1], B: v.pix[i+2], A: v.pix[i+3]}
}
