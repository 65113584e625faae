package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leeforge/imagekit/config"
	"github.com/leeforge/imagekit/env_mode"
	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/json"
	"github.com/leeforge/imagekit/logging"
	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/media/storage"
)

// app carries what every subcommand shares. It is filled by the root
// command's PersistentPreRunE.
type app struct {
	configDir string
	env       string
	logLevel  string
	jsonOut   bool
	quiet     bool

	cfg      AppConfig
	logger   logging.Logger
	pipeline *processor.Pipeline
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "imagekit",
		Short:         "Re-encode raster images to PNG, JPEG, WebP and ICO",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			cmd.SetContext(logging.ToContext(cmd.Context(), a.logger))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", config.DefaultConfigOptions().BasePath, "directory holding imagekit.yaml")
	flags.StringVar(&a.env, "env", "", "environment: development, production or test")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging.level")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only print errors")

	cmd.AddCommand(
		newConvertCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newInspectCmd(a),
		newFormatsCmd(a),
		newPresetsCmd(a),
	)
	return cmd
}

// setup loads configuration, then builds the logger and the pipeline.
func (a *app) setup() error {
	if a.env != "" {
		env_mode.SetMode(env_mode.ParseEnv(a.env))
	}

	cfg := DefaultAppConfig()
	opts := config.DefaultConfigOptions()
	opts.BasePath = a.configDir
	opts.Defaults = configKeys(cfg)

	loader, err := config.NewConfig(opts)
	if err != nil {
		return apperrors.WrapWithType(err, apperrors.ErrorTypeValidation, "load config")
	}
	if err := loader.Bind(&cfg); err != nil {
		return apperrors.WrapWithType(err, apperrors.ErrorTypeValidation, "bind config")
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.quiet {
		cfg.Logging.Level = "error"
	}
	a.cfg = cfg

	a.logger = logging.Init(cfg.Logging)
	a.logger.Debug("configuration loaded",
		zap.Strings("files", loader.Files()),
		zap.String("env", string(env_mode.Mode())))

	a.pipeline, err = processor.New(cfg.Pipeline, processor.WithLogger(a.logger.Named("pipeline")))
	return err
}

// provider opens the output storage. dir overrides the configured base path;
// dryRun keeps everything in memory.
func (a *app) provider(dir string, dryRun bool) (storage.Provider, error) {
	if dryRun {
		return storage.NewMemoryProvider(), nil
	}
	pc := a.cfg.Output.Storage
	if dir != "" {
		pc.Type = "local"
		pc.BasePath = dir
	}
	return storage.NewProviderFactory().CreateFromConfig(pc)
}

// target resolves spec against the configured defaults.
func (a *app) target(spec processor.TargetSpec) (processor.Target, error) {
	return spec.Merge(a.cfg.Defaults).Build()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "encode json")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
