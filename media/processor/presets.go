package processor

import (
	"sort"
	"strings"

	apperrors "github.com/leeforge/imagekit/errors"
)

// Preset is a named conversion target.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      Target `json:"target"`
}

var presets = map[string]Preset{
	"thumbnail": {
		Name:        "thumbnail",
		Description: "300x300 JPEG, center-cropped",
		Target:      Target{Format: FormatJPEG, Quality: Quality(0.85), Size: &Size{Width: 300, Height: 300}, Fit: FitContain},
	},
	"medium": {
		Name:        "medium",
		Description: "800x600 JPEG, letterboxed on white",
		Target:      Target{Format: FormatJPEG, Quality: Quality(0.85), Size: &Size{Width: 800, Height: 600}, Fit: FitLetterbox},
	},
	"large": {
		Name:        "large",
		Description: "1920x1080 JPEG, letterboxed on white",
		Target:      Target{Format: FormatJPEG, Quality: Quality(0.9), Size: &Size{Width: 1920, Height: 1080}, Fit: FitLetterbox},
	},
	"open-graph": {
		Name:        "open-graph",
		Description: "1200x630 JPEG for link previews",
		Target:      Target{Format: FormatJPEG, Quality: Quality(0.9), Size: &Size{Width: 1200, Height: 630}, Fit: FitContain},
	},
	"discover": {
		Name:        "discover",
		Description: "1200x675 JPEG, covers the box and crops overflow",
		Target:      Target{Format: FormatJPEG, Quality: Quality(0.9), Size: &Size{Width: 1200, Height: 675}, Fit: FitContain},
	},
	"favicon": {
		Name:        "favicon",
		Description: "ICO with 16, 32 and 48 px entries",
		Target:      Target{Format: FormatICO, IconSizes: []int{16, 32, 48}},
	},
	"webp": {
		Name:        "webp",
		Description: "WebP at the source size",
		Target:      Target{Format: FormatWebP, Quality: Quality(0.8)},
	},
}

// LookupPreset returns a copy of the named preset's target.
func LookupPreset(name string) (Target, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Target{}, apperrors.NewNotFound("preset", name)
	}
	t := p.Target
	if t.Size != nil {
		size := *t.Size
		t.Size = &size
	}
	if t.Quality != nil {
		t.Quality = Quality(*t.Quality)
	}
	t.IconSizes = append([]int(nil), t.IconSizes...)
	return t, nil
}

// Presets returns every preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
