package processor

import (
	"image"
	"math"
)

// Placement is where the scaled source lands on the surface. Offsets may be
// negative when the scaled source overflows and gets cropped.
type Placement struct {
	ScaleX float64
	ScaleY float64
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the draw region in surface coordinates.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Uniform reports whether both axes use the same scale factor.
func (p Placement) Uniform() bool {
	return p.ScaleX == p.ScaleY
}

// Identity reports whether the source is drawn unscaled at the origin.
func (p Placement) Identity(srcW, srcH int) bool {
	return p.X == 0 && p.Y == 0 && p.Width == srcW && p.Height == srcH
}

// ComputePlacement maps a srcW×srcH image onto a canvas with the given fit mode.
func ComputePlacement(srcW, srcH int, canvas Size, fit FitMode) Placement {
	tw, th := float64(canvas.Width), float64(canvas.Height)
	sw, sh := float64(srcW), float64(srcH)

	var scale float64
	switch fit {
	case FitContain:
		scale = math.Max(tw/sw, th/sh)
	case FitLetterbox:
		scale = math.Min(tw/sw, th/sh)
	default:
		return Placement{
			ScaleX: tw / sw,
			ScaleY: th / sh,
			Width:  canvas.Width,
			Height: canvas.Height,
		}
	}

	w := scaledLength(sw, scale)
	h := scaledLength(sh, scale)
	return Placement{
		ScaleX: scale,
		ScaleY: scale,
		X:      (canvas.Width - w) / 2,
		Y:      (canvas.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}

func scaledLength(v, scale float64) int {
	n := int(math.Round(v * scale))
	if n < 1 {
		return 1
	}
	return n
}

// canvasFor returns the surface size for a target: its Size, or the source
// dimensions when no size is requested.
func canvasFor(t Target, srcW, srcH int) (Size, Placement) {
	if t.Size == nil {
		return Size{Width: srcW, Height: srcH}, Placement{ScaleX: 1, ScaleY: 1, Width: srcW, Height: srcH}
	}
	return *t.Size, ComputePlacement(srcW, srcH, *t.Size, t.Fit)
}
