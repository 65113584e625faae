package processor

import (
	"strings"
)

// TargetSpec is the flat, text-friendly form of a Target used by manifests,
// config files and command-line flags. Zero fields are left to the preset or
// the defaults; Quality is a pointer so that 0 can be asked for.
type TargetSpec struct {
	Preset     string   `json:"preset,omitempty" yaml:"preset,omitempty" mapstructure:"preset"`
	Format     string   `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`
	Quality    *float64 `json:"quality,omitempty" yaml:"quality,omitempty" mapstructure:"quality"`
	Width      int      `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width"`
	Height     int      `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height"`
	Fit        string   `json:"fit,omitempty" yaml:"fit,omitempty" mapstructure:"fit"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty" mapstructure:"background"`
	Brightness float64  `json:"brightness,omitempty" yaml:"brightness,omitempty" mapstructure:"brightness"`
	Contrast   float64  `json:"contrast,omitempty" yaml:"contrast,omitempty" mapstructure:"contrast"`
	Lossless   bool     `json:"lossless,omitempty" yaml:"lossless,omitempty" mapstructure:"lossless"`
	IconSizes  []int    `json:"iconSizes,omitempty" yaml:"iconSizes,omitempty" mapstructure:"iconSizes"`
}

// Merge returns s with the zero fields filled from base. A spec naming its
// own preset is returned as is.
func (s TargetSpec) Merge(base TargetSpec) TargetSpec {
	if s.Preset != "" {
		return s
	}
	s.Preset = base.Preset
	if s.Format == "" {
		s.Format = base.Format
	}
	if s.Quality == nil {
		s.Quality = base.Quality
	}
	if s.Width == 0 && s.Height == 0 {
		s.Width, s.Height = base.Width, base.Height
	}
	if s.Fit == "" {
		s.Fit = base.Fit
	}
	if s.Background == "" {
		s.Background = base.Background
	}
	if s.Brightness == 0 {
		s.Brightness = base.Brightness
	}
	if s.Contrast == 0 {
		s.Contrast = base.Contrast
	}
	s.Lossless = s.Lossless || base.Lossless
	if len(s.IconSizes) == 0 {
		s.IconSizes = base.IconSizes
	}
	return s
}

// Build resolves the spec into a Target. A preset supplies the starting
// point; every non-zero field overrides it. A size without a fit mode
// stretches.
func (s TargetSpec) Build() (Target, error) {
	var t Target
	if s.Preset != "" {
		preset, err := LookupPreset(s.Preset)
		if err != nil {
			return Target{}, err
		}
		t = preset
	}

	if s.Format != "" {
		f, err := ParseFormat(s.Format)
		if err != nil {
			return Target{}, err
		}
		t.Format = f
	}
	if s.Quality != nil {
		t.Quality = Quality(*s.Quality)
	}
	if s.Width != 0 || s.Height != 0 {
		t.Size = &Size{Width: s.Width, Height: s.Height}
	}
	if s.Fit != "" {
		fit, err := ParseFitMode(s.Fit)
		if err != nil {
			return Target{}, err
		}
		t.Fit = fit
	}
	if t.Size != nil && t.Fit == "" {
		t.Fit = FitStretch
	}
	if strings.TrimSpace(s.Background) != "" {
		bg, err := ParseColor(s.Background)
		if err != nil {
			return Target{}, err
		}
		t.Background = bg
	}
	if s.Brightness != 0 || s.Contrast != 0 {
		adj := Adjustment{Brightness: 1, Contrast: 1}
		if t.Adjust != nil {
			adj = *t.Adjust
		}
		if s.Brightness != 0 {
			adj.Brightness = s.Brightness
		}
		if s.Contrast != 0 {
			adj.Contrast = s.Contrast
		}
		t.Adjust = &adj
	}
	if s.Lossless {
		t.Lossless = true
	}
	if len(s.IconSizes) > 0 {
		t.IconSizes = append([]int(nil), s.IconSizes...)
	}
	return t, nil
}
