package processor

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func TestReencodeWebP(t *testing.T) {
	p := newTestPipeline(t, Config{})
	data := encodeAs(t, noise(64, 48), imaging.JPEG)

	out, err := p.Reencode(context.Background(), data, Target{Format: FormatWebP, Quality: Quality(0.8)})
	require.NoError(t, err)

	assert.Equal(t, "image/webp", out.MIME)
	assert.Equal(t, ".webp", out.Extension)
	cfg, err := webp.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestReencodeWebPResizedLossless(t *testing.T) {
	p := newTestPipeline(t, Config{Resampler: ResamplerNearest})
	data := encodeAs(t, solid(40, 40, red), imaging.PNG)

	out, err := p.Reencode(context.Background(), data, Target{
		Format:   FormatWebP,
		Lossless: true,
		Size:     &Size{Width: 20, Height: 10},
		Fit:      FitStretch,
	})
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Equal(t, red, imaging.Clone(img).NRGBAAt(5, 5))
}

func TestDefaultEncodersIncludeWebP(t *testing.T) {
	enc, err := DefaultEncoders().Lookup(FormatWebP)
	require.NoError(t, err)
	assert.True(t, enc.Available())
}

func TestWebPQuality(t *testing.T) {
	assert.Equal(t, 0, webpQuality(0))
	assert.Equal(t, 80, webpQuality(0.8))
	assert.Equal(t, 100, webpQuality(1))
}
