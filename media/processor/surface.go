package processor

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	apperrors "github.com/leeforge/imagekit/errors"
)

// SurfaceFactory allocates render surfaces.
type SurfaceFactory interface {
	// NewSurface returns a width×height surface filled with background.
	// A nil background leaves it transparent.
	NewSurface(width, height int, background color.Color) xdraw.Image
}

// NRGBASurfaceFactory allocates *image.NRGBA surfaces.
type NRGBASurfaceFactory struct{}

func (NRGBASurfaceFactory) NewSurface(width, height int, background color.Color) xdraw.Image {
	surface := image.NewNRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		xdraw.Draw(surface, surface.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)
	}
	return surface
}

// Resampler names a scaling kernel.
type Resampler string

const (
	ResamplerLanczos3   Resampler = "lanczos3"
	ResamplerBicubic    Resampler = "bicubic"
	ResamplerBilinear   Resampler = "bilinear"
	ResamplerNearest    Resampler = "nearest"
	ResamplerCatmullRom Resampler = "catmullrom"
)

func (r Resampler) interpolation() resize.InterpolationFunction {
	switch r {
	case ResamplerBicubic:
		return resize.Bicubic
	case ResamplerBilinear:
		return resize.Bilinear
	case ResamplerNearest:
		return resize.NearestNeighbor
	default:
		return resize.Lanczos3
	}
}

// drawScaled draws src into dst over the placement's region. Parts outside
// dst are clipped.
func drawScaled(dst xdraw.Image, src image.Image, p Placement, r Resampler) {
	sb := src.Bounds()
	if p.Identity(sb.Dx(), sb.Dy()) {
		xdraw.Draw(dst, p.Rect(), src, sb.Min, xdraw.Over)
		return
	}

	if r == ResamplerCatmullRom {
		xdraw.CatmullRom.Scale(dst, p.Rect(), src, sb, xdraw.Over, nil)
		return
	}

	scaled := resize.Resize(uint(p.Width), uint(p.Height), src, r.interpolation())
	xdraw.Draw(dst, p.Rect(), scaled, scaled.Bounds().Min, xdraw.Over)
}

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// backgroundFor picks the surface fill for a target.
func backgroundFor(t Target) color.Color {
	if t.Background != nil {
		if !t.Format.HasAlpha() {
			return opaque(t.Background)
		}
		return t.Background
	}
	if t.Fit == FitLetterbox && t.Size != nil || !t.Format.HasAlpha() {
		return white
	}
	return nil
}

// opaque composites c over white.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return n
	}
	blend := func(v uint8) uint8 {
		return uint8((uint32(v)*uint32(n.A) + 255*(255-uint32(n.A)) + 127) / 255)
	}
	return color.NRGBA{R: blend(n.R), G: blend(n.G), B: blend(n.B), A: 255}
}

// ParseColor reads "#rgb", "#rrggbb", "#rrggbbaa", "transparent", "white"
// or "black".
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return nil, nil
	case "transparent", "none":
		return color.NRGBA{}, nil
	case "white":
		return white, nil
	case "black":
		return color.NRGBA{A: 255}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, apperrors.NewInvalid("background", s, "expected #rgb, #rrggbb or #rrggbbaa")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, apperrors.NewInvalid("background", s, "expected hex digits")
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
