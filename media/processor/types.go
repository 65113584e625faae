package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	apperrors "github.com/leeforge/imagekit/errors"
)

// Format is an output container format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatICO  Format = "ico"
)

// Formats lists every output format in display order.
var Formats = []Format{FormatPNG, FormatJPEG, FormatWebP, FormatICO}

// ParseFormat accepts format names, common extensions and MIME types.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png", "image/png":
		return FormatPNG, nil
	case "jpeg", "jpg", "image/jpeg":
		return FormatJPEG, nil
	case "webp", "image/webp":
		return FormatWebP, nil
	case "ico", "image/x-icon", "image/vnd.microsoft.icon":
		return FormatICO, nil
	}
	return "", apperrors.NewInvalid("format", s, "must be one of png, jpeg, webp, ico").
		WithCode(apperrors.CodeUnsupportedFormat)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case "":
		return ""
	default:
		return "." + string(f)
	}
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	case FormatICO:
		return "image/x-icon"
	}
	return "application/octet-stream"
}

// HasAlpha reports whether the format stores transparency.
func (f Format) HasAlpha() bool {
	return f != FormatJPEG
}

// Lossy reports whether quality affects the output.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP
}

// FitMode maps a source aspect ratio onto a fixed-size surface.
type FitMode string

const (
	// FitStretch scales each axis independently to fill the surface exactly.
	FitStretch FitMode = "stretch"
	// FitContain scales uniformly by max(tw/sw, th/sh), centers the result on
	// both axes and crops what overflows.
	FitContain FitMode = "contain"
	// FitLetterbox scales uniformly by min(tw/sw, th/sh), centers the result
	// and fills the uncovered area with the background colour.
	FitLetterbox FitMode = "letterbox"
)

// ParseFitMode accepts the mode names and the aliases used by the tools.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stretch", "fill":
		return FitStretch, nil
	case "contain", "cover", "contain-cover-center", "center-crop":
		return FitContain, nil
	case "letterbox", "contain-letterbox", "fit":
		return FitLetterbox, nil
	}
	return "", apperrors.NewInvalid("fit", s, "must be one of stretch, contain, letterbox")
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width" yaml:"width" validate:"gt=0,lte=16384"`
	Height int `json:"height" yaml:"height" validate:"gt=0,lte=16384"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Adjustment is a per-channel brightness/contrast transform.
// 1.0 for both factors leaves pixels unchanged.
type Adjustment struct {
	Brightness float64 `json:"brightness" yaml:"brightness" validate:"gte=0,lte=10"`
	Contrast   float64 `json:"contrast" yaml:"contrast" validate:"gte=0,lte=10"`
}

// Target describes what one conversion call should produce.
type Target struct {
	Format Format `json:"format" validate:"required,oneof=png jpeg webp ico"`
	// Quality in [0,1]; only lossy formats use it. Nil selects DefaultQuality,
	// 0 is the lowest quality the encoder offers.
	Quality *float64 `json:"quality,omitempty" validate:"omitempty,gte=0,lte=1"`
	// Size of the output surface. Nil keeps the source dimensions.
	Size *Size `json:"size,omitempty" validate:"omitempty"`
	// Fit is required whenever Size is set.
	Fit FitMode `json:"fit,omitempty" validate:"omitempty,oneof=stretch contain letterbox"`
	// Background fills the surface before drawing. Nil means transparent,
	// except for letterboxing and formats without alpha, which use white.
	Background color.Color `json:"-"`
	Adjust     *Adjustment `json:"adjust,omitempty" validate:"omitempty"`
	// Lossless selects lossless WebP.
	Lossless bool `json:"lossless,omitempty"`
	// IconSizes are the square entry sizes packed into an ICO file.
	IconSizes []int `json:"iconSizes,omitempty" validate:"omitempty,max=10,dive,gte=1,lte=256"`
}

// DefaultQuality is used when a target leaves Quality unset.
const DefaultQuality = 0.92

// Quality returns a pointer to q for use in Target literals.
func Quality(q float64) *float64 {
	return &q
}

// QualityValue returns the requested quality, or DefaultQuality when unset.
func (t Target) QualityValue() float64 {
	if t.Quality == nil {
		return DefaultQuality
	}
	return *t.Quality
}

// SourceImage is a decoded input. It lives for one conversion call.
type SourceImage struct {
	Data   []byte
	Image  image.Image
	MIME   string
	Format string
	Width  int
	Height int
}

// ImageInfo is what can be learned from an image header.
type ImageInfo struct {
	MIME   string `json:"mime"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// EncodedOutput is the complete result of a conversion.
type EncodedOutput struct {
	Data      []byte  `json:"-"`
	Format    Format  `json:"format"`
	MIME      string  `json:"mime"`
	Extension string  `json:"extension"`
	Quality   float64 `json:"quality"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// Len returns the encoded size in bytes.
func (o *EncodedOutput) Len() int {
	return len(o.Data)
}

// Reader returns a reader over the encoded bytes.
func (o *EncodedOutput) Reader() io.Reader {
	return bytes.NewReader(o.Data)
}
