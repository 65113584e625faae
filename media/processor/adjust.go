package processor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Identity reports whether the adjustment leaves pixels unchanged.
func (a Adjustment) Identity() bool {
	return a.Brightness == 1 && a.Contrast == 1
}

// Apply maps one channel value: clamp(((v*brightness)-128)*contrast+128, 0, 255).
func (a Adjustment) Apply(v uint8) uint8 {
	f := ((float64(v)*a.Brightness)-128)*a.Contrast + 128
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}

func (a Adjustment) table() [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = a.Apply(uint8(i))
	}
	return lut
}

// AdjustPixels applies a to every colour channel of img. Alpha is copied as is.
func AdjustPixels(img image.Image, a Adjustment) *image.NRGBA {
	lut := a.table()
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}
