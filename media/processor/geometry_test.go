package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePlacement(t *testing.T) {
	tests := []struct {
		name   string
		srcW   int
		srcH   int
		canvas Size
		fit    FitMode
		want   Placement
	}{
		{
			name:   "stretch fills the canvas",
			srcW:   800,
			srcH:   600,
			canvas: Size{Width: 300, Height: 300},
			fit:    FitStretch,
			want:   Placement{ScaleX: 0.375, ScaleY: 0.5, Width: 300, Height: 300},
		},
		{
			name:   "contain covers and crops vertically",
			srcW:   800,
			srcH:   600,
			canvas: Size{Width: 1200, Height: 700},
			fit:    FitContain,
			want:   Placement{ScaleX: 1.5, ScaleY: 1.5, X: 0, Y: -100, Width: 1200, Height: 900},
		},
		{
			name:   "contain crops horizontally",
			srcW:   400,
			srcH:   100,
			canvas: Size{Width: 200, Height: 200},
			fit:    FitContain,
			want:   Placement{ScaleX: 2, ScaleY: 2, X: -300, Y: 0, Width: 800, Height: 200},
		},
		{
			name:   "letterbox pads vertically",
			srcW:   800,
			srcH:   600,
			canvas: Size{Width: 400, Height: 400},
			fit:    FitLetterbox,
			want:   Placement{ScaleX: 0.5, ScaleY: 0.5, X: 0, Y: 50, Width: 400, Height: 300},
		},
		{
			name:   "tiny scale keeps one pixel",
			srcW:   1000,
			srcH:   1,
			canvas: Size{Width: 10, Height: 10},
			fit:    FitLetterbox,
			want:   Placement{ScaleX: 0.01, ScaleY: 0.01, X: 0, Y: 4, Width: 10, Height: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePlacement(tt.srcW, tt.srcH, tt.canvas, tt.fit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlacementUniform(t *testing.T) {
	assert.False(t, ComputePlacement(800, 600, Size{Width: 100, Height: 100}, FitStretch).Uniform())
	assert.True(t, ComputePlacement(800, 600, Size{Width: 100, Height: 100}, FitContain).Uniform())
}

func TestCanvasForWithoutSize(t *testing.T) {
	canvas, placement := canvasFor(Target{Format: FormatPNG}, 37, 23)

	assert.Equal(t, Size{Width: 37, Height: 23}, canvas)
	assert.True(t, placement.Identity(37, 23))
}
