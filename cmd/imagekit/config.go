package main

import (
	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/media/storage"
)

// AppConfig is the content of config/imagekit.yaml.
type AppConfig struct {
	Logging  logging.Config       `mapstructure:"logging"`
	Pipeline processor.Config     `mapstructure:"pipeline"`
	Output   OutputConfig         `mapstructure:"output"`
	Defaults processor.TargetSpec `mapstructure:"defaults"`
}

// OutputConfig controls where converted files go.
type OutputConfig struct {
	Storage   storage.ProviderConfig `mapstructure:"storage"`
	Overwrite bool                   `mapstructure:"overwrite"`
}

// DefaultAppConfig returns the configuration used when no file sets a value.
func DefaultAppConfig() AppConfig {
	var cfg AppConfig
	_ = defaults.Set(&cfg)
	if cfg.Defaults.Format == "" {
		cfg.Defaults.Format = string(processor.FormatPNG)
	}
	return cfg
}

// Validate implements config.Validator.
func (c *AppConfig) Validate() error {
	v := validatorV10.New()
	if err := v.Struct(c.Output.Storage); err != nil {
		return apperrors.NewValidation("invalid output storage").WithInnerError(err)
	}
	if err := v.Struct(c.Pipeline); err != nil {
		return apperrors.NewValidation("invalid pipeline config").WithInnerError(err)
	}
	return nil
}

// configKeys seeds every key that environment variables may override.
// An unset default quality is seeded as nil, which viper skips when binding.
func configKeys(cfg AppConfig) map[string]any {
	var quality any
	if cfg.Defaults.Quality != nil {
		quality = *cfg.Defaults.Quality
	}
	return map[string]any{
		"logging.level":              cfg.Logging.Level,
		"logging.format":             cfg.Logging.Format,
		"logging.director":           cfg.Logging.Director,
		"logging.log-in-terminal":    cfg.Logging.LogInTerminal,
		"pipeline.maxInputBytes":     cfg.Pipeline.MaxInputBytes,
		"pipeline.maxPixels":         cfg.Pipeline.MaxPixels,
		"pipeline.resampler":         string(cfg.Pipeline.Resampler),
		"pipeline.svgScale":          cfg.Pipeline.SVGScale,
		"pipeline.ignoreOrientation": cfg.Pipeline.IgnoreOrientation,
		"output.storage.type":        cfg.Output.Storage.Type,
		"output.storage.basePath":    cfg.Output.Storage.BasePath,
		"output.overwrite":           cfg.Output.Overwrite,
		"defaults.format":            cfg.Defaults.Format,
		"defaults.quality":           quality,
	}
}
