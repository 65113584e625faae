package processor

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// noise returns an image that compresses poorly.
func noise(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	for i := range img.Pix {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		img.Pix[i] = uint8(seed)
	}
	return img
}

// halves returns an image whose left half is left and right half is right.
func halves(w, h int, left, right color.Color) *image.NRGBA {
	img := solid(w, h, left)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.Set(x, y, right)
		}
	}
	return img
}

func encodeAs(t *testing.T, img image.Image, f imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, f))
	return buf.Bytes()
}

func decodeOutput(t *testing.T, out *EncodedOutput) image.Image {
	t.Helper()
	img, _, err := image.Decode(out.Reader())
	require.NoError(t, err)
	return img
}

func newTestPipeline(t *testing.T, cfg Config, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	return p
}

// countingDecoder records how often each method is called.
type countingDecoder struct {
	Decoder
	headerReads int
	decodes     int
}

func (d *countingDecoder) ReadHeader(data []byte) (ImageInfo, error) {
	d.headerReads++
	return d.Decoder.ReadHeader(data)
}

func (d *countingDecoder) Decode(data []byte) (*SourceImage, error) {
	d.decodes++
	return d.Decoder.Decode(data)
}

type unavailableEncoder struct{ format Format }

func (e unavailableEncoder) Format() Format { return e.format }
func (unavailableEncoder) Available() bool  { return false }
func (e unavailableEncoder) Encode(_ io.Writer, _ image.Image, _ Target) error {
	return errEncoderUnavailable(e.format)
}
