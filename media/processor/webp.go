//go:build !libwebp

package processor

import (
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// WebPEncoder writes WebP with libwebp compiled to WebAssembly, so the
// default build needs no cgo. Build with -tags libwebp to link the system
// library instead.
type WebPEncoder struct{}

func (WebPEncoder) Format() Format  { return FormatWebP }
func (WebPEncoder) Available() bool { return true }

func (WebPEncoder) Encode(w io.Writer, img image.Image, target Target) error {
	return webp.Encode(w, img, webp.Options{
		Quality:  webpQuality(target.QualityValue()),
		Lossless: target.Lossless,
		Method:   4,
	})
}
