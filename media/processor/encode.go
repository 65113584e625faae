package processor

import (
	"image"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	apperrors "github.com/leeforge/imagekit/errors"
)

// Encoder writes an image in one output format.
type Encoder interface {
	// Format returns the output format the encoder produces.
	Format() Format
	// Available returns false when the encoder cannot run in this build.
	Available() bool
	// Encode writes img using the quality and format options of target.
	Encode(w io.Writer, img image.Image, target Target) error
}

// EncoderStatus describes one registered encoder.
type EncoderStatus struct {
	Format    Format `json:"format"`
	MIME      string `json:"mime"`
	Extension string `json:"extension"`
	Lossy     bool   `json:"lossy"`
	Available bool   `json:"available"`
}

// EncoderSet maps formats to encoders.
type EncoderSet map[Format]Encoder

// DefaultEncoders returns the built-in encoders.
func DefaultEncoders() EncoderSet {
	return EncoderSet{
		FormatPNG:  PNGEncoder{},
		FormatJPEG: JPEGEncoder{},
		FormatWebP: WebPEncoder{},
		FormatICO:  ICOEncoder{},
	}
}

// Lookup returns the encoder for f. Missing or unavailable encoders yield an
// EncodeError with the "unavailable" detail set.
func (s EncoderSet) Lookup(f Format) (Encoder, error) {
	enc, ok := s[f]
	if !ok || !enc.Available() {
		return nil, errEncoderUnavailable(f)
	}
	return enc, nil
}

// Statuses lists every known format and whether it can be encoded.
func (s EncoderSet) Statuses() []EncoderStatus {
	seen := make(map[Format]bool, len(s))
	formats := append([]Format(nil), Formats...)
	for _, f := range Formats {
		seen[f] = true
	}
	var extra []Format
	for f := range s {
		if !seen[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	formats = append(formats, extra...)

	out := make([]EncoderStatus, 0, len(formats))
	for _, f := range formats {
		enc, ok := s[f]
		out = append(out, EncoderStatus{
			Format:    f,
			MIME:      f.MIME(),
			Extension: f.Extension(),
			Lossy:     f.Lossy(),
			Available: ok && enc.Available(),
		})
	}
	return out
}

func errEncoderUnavailable(f Format) *apperrors.AppError {
	return apperrors.NewEncode("no encoder available for format").
		WithCode(apperrors.CodeEncoderMissing).
		WithDetail("format", string(f)).
		WithDetail("unavailable", true)
}

// IsUnavailable reports whether err means the target format cannot be
// encoded in this build, as opposed to an encode that failed.
func IsUnavailable(err error) bool {
	appErr := apperrors.FromError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeEncode {
		return false
	}
	v, _ := appErr.Detail("unavailable").(bool)
	return v
}

// jpegQuality maps [0,1] onto the 1..100 scale of the JPEG encoder.
func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

// webpQuality maps [0,1] onto libwebp's 0..100 scale.
func webpQuality(q float64) int {
	return int(math.Max(0, math.Min(100, math.Round(q*100))))
}

// JPEGEncoder writes baseline JPEG.
type JPEGEncoder struct{}

func (JPEGEncoder) Format() Format  { return FormatJPEG }
func (JPEGEncoder) Available() bool { return true }

func (JPEGEncoder) Encode(w io.Writer, img image.Image, target Target) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(target.QualityValue())))
}

// PNGEncoder writes PNG; quality is ignored.
type PNGEncoder struct{}

func (PNGEncoder) Format() Format  { return FormatPNG }
func (PNGEncoder) Available() bool { return true }

func (PNGEncoder) Encode(w io.Writer, img image.Image, _ Target) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
}
