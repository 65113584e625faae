package main

import (
	"github.com/spf13/pflag"

	"github.com/leeforge/imagekit/media/processor"
)

// targetFlags are the conversion options shared by convert and batch.
type targetFlags struct {
	spec    processor.TargetSpec
	formats []string
	quality float64
	flags   *pflag.FlagSet
}

func (f *targetFlags) register(fs *pflag.FlagSet) {
	f.flags = fs
	fs.StringSliceVarP(&f.formats, "format", "f", nil, "output format(s): png, jpeg, webp, ico")
	fs.StringVarP(&f.spec.Preset, "preset", "p", "", "start from a named preset")
	fs.Float64Var(&f.quality, "quality", processor.DefaultQuality, "quality for lossy formats, 0..1 (default from the preset or config)")
	fs.IntVar(&f.spec.Width, "width", 0, "output width in pixels")
	fs.IntVar(&f.spec.Height, "height", 0, "output height in pixels")
	fs.StringVar(&f.spec.Fit, "fit", "", "stretch, contain or letterbox")
	fs.StringVar(&f.spec.Background, "background", "", "background colour, e.g. #ffffff or transparent")
	fs.Float64Var(&f.spec.Brightness, "brightness", 0, "brightness factor, 1 leaves pixels unchanged")
	fs.Float64Var(&f.spec.Contrast, "contrast", 0, "contrast factor, 1 leaves pixels unchanged")
	fs.BoolVar(&f.spec.Lossless, "lossless", false, "lossless WebP")
	fs.IntSliceVar(&f.spec.IconSizes, "icon-sizes", nil, "ICO entry sizes, e.g. 16,32,48")
}

// specs returns one spec per requested format, or the bare spec when no
// format was given.
func (f *targetFlags) specs() []processor.TargetSpec {
	base := f.spec
	if f.flags != nil && f.flags.Changed("quality") {
		base.Quality = processor.Quality(f.quality)
	}
	if len(f.formats) == 0 {
		return []processor.TargetSpec{base}
	}
	specs := make([]processor.TargetSpec, 0, len(f.formats))
	for _, format := range f.formats {
		s := base
		s.Format = format
		specs = append(specs, s)
	}
	return specs
}

// targets resolves every spec against the configured defaults.
func (f *targetFlags) targets(a *app) ([]processor.Target, error) {
	specs := f.specs()
	targets := make([]processor.Target, 0, len(specs))
	for _, s := range specs {
		t, err := a.target(s)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
