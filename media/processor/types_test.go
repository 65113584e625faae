package processor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/imagekit/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{".JPG", FormatJPEG},
		{"jpeg", FormatJPEG},
		{"image/webp", FormatWebP},
		{" ico ", FormatICO},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("avif")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalid))
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.FromError(err).Code)
}

func TestParseFitMode(t *testing.T) {
	tests := map[string]FitMode{
		"stretch":              FitStretch,
		"fill":                 FitStretch,
		"contain":              FitContain,
		"cover":                FitContain,
		"contain-cover-center": FitContain,
		"letterbox":            FitLetterbox,
		"contain-letterbox":    FitLetterbox,
	}
	for in, want := range tests {
		got, err := ParseFitMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFitMode("zoom")
	assert.Error(t, err)
}

func TestFormatProperties(t *testing.T) {
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".ico", FormatICO.Extension())
	assert.Equal(t, "image/x-icon", FormatICO.MIME())
	assert.False(t, FormatJPEG.HasAlpha())
	assert.True(t, FormatPNG.HasAlpha())
	assert.True(t, FormatWebP.Lossy())
	assert.False(t, FormatPNG.Lossy())
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		source string
		format Format
		want   string
	}{
		{"photo.png", FormatJPEG, "photo.jpg"},
		{"/tmp/in/holiday.final.jpeg", FormatWebP, "holiday.final.webp"},
		{"logo", FormatICO, "logo.ico"},
		{".hidden", FormatPNG, ".hidden.png"},
		{"", FormatPNG, "image.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DownloadName(tt.source, tt.format), tt.source)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#102030", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}},
		{"#10203080", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
		{"transparent", color.NRGBA{}},
		{"black", color.NRGBA{A: 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	got, err := ParseColor("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestNormalizeTarget(t *testing.T) {
	t.Run("defaults quality", func(t *testing.T) {
		got, err := NormalizeTarget(Target{Format: "jpg"})
		require.NoError(t, err)
		assert.Equal(t, FormatJPEG, got.Format)
		require.NotNil(t, got.Quality)
		assert.Equal(t, DefaultQuality, *got.Quality)
	})

	t.Run("keeps explicit quality", func(t *testing.T) {
		got, err := NormalizeTarget(Target{Format: FormatJPEG, Quality: Quality(0.5)})
		require.NoError(t, err)
		assert.Equal(t, 0.5, *got.Quality)
	})

	t.Run("keeps zero quality", func(t *testing.T) {
		got, err := NormalizeTarget(Target{Format: FormatJPEG, Quality: Quality(0)})
		require.NoError(t, err)
		assert.Equal(t, 0.0, *got.Quality)
	})

	t.Run("does not alias the caller's quality", func(t *testing.T) {
		q := Quality(0.4)
		got, err := NormalizeTarget(Target{Format: FormatJPEG, Quality: q})
		require.NoError(t, err)
		*q = 0.9
		assert.Equal(t, 0.4, *got.Quality)
	})

	t.Run("rejects quality above one", func(t *testing.T) {
		_, err := NormalizeTarget(Target{Format: FormatJPEG, Quality: Quality(1.5)})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.NotNil(t, apperrors.FromError(err).Detail("Target.Quality"))
	})

	t.Run("requires format", func(t *testing.T) {
		_, err := NormalizeTarget(Target{})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("requires fit with size", func(t *testing.T) {
		_, err := NormalizeTarget(Target{Format: FormatPNG, Size: &Size{Width: 10, Height: 10}})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects zero width", func(t *testing.T) {
		_, err := NormalizeTarget(Target{Format: FormatPNG, Size: &Size{Width: 0, Height: 10}, Fit: FitStretch})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("default icon sizes", func(t *testing.T) {
		got, err := NormalizeTarget(Target{Format: FormatICO})
		require.NoError(t, err)
		assert.Equal(t, DefaultIconSizes, got.IconSizes)
	})
}

func TestLookupPreset(t *testing.T) {
	target, err := LookupPreset("Discover")
	require.NoError(t, err)
	assert.Equal(t, FitContain, target.Fit)
	assert.Equal(t, 1200, target.Size.Width)

	target.Size.Width = 1
	again, err := LookupPreset("discover")
	require.NoError(t, err)
	assert.Equal(t, 1200, again.Size.Width)

	_, err = LookupPreset("poster")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	names := make([]string, 0)
	for _, p := range Presets() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"discover", "favicon", "large", "medium", "open-graph", "thumbnail", "webp"}, names)
}
