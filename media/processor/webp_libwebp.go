//go:build libwebp

package processor

import (
	"image"
	"io"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// WebPEncoder writes WebP through libwebp (cgo). Builds without the libwebp
// tag use the pure-Go encoder in webp.go.
type WebPEncoder struct{}

func (WebPEncoder) Format() Format  { return FormatWebP }
func (WebPEncoder) Available() bool { return true }

func (WebPEncoder) Encode(w io.Writer, img image.Image, target Target) error {
	var (
		options *encoder.Options
		err     error
	)
	if target.Lossless {
		options, err = encoder.NewLosslessEncoderOptions(encoder.PresetDefault, 6)
	} else {
		options, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(webpQuality(target.QualityValue())))
	}
	if err != nil {
		return err
	}
	return webp.Encode(w, img, options)
}
