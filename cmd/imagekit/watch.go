package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/media/batch"
)

type watchOptions struct {
	targetFlags
	out       string
	folder    string
	overwrite bool
	debounce  time.Duration
}

func newWatchCmd(a *app) *cobra.Command {
	o := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Convert images as they appear in a directory",
		Long: `Watch DIR and convert every image that is created or rewritten in it,
one file at a time, until interrupted. Sub-directories are not watched and
files the watch itself writes are ignored.`,
		Example: `  imagekit watch incoming --format webp --out public
  imagekit watch drop --preset thumbnail --debounce 2s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a, args[0])
		},
	}

	o.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output directory (default from output.storage.basePath)")
	cmd.Flags().StringVar(&o.folder, "folder", "", "sub-folder inside the output directory")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "replace existing files instead of numbering new ones")
	cmd.Flags().DurationVar(&o.debounce, "debounce", batch.DefaultDebounce, "quiet time before a changed file is converted")
	return cmd
}

func (o *watchOptions) run(cmd *cobra.Command, a *app, dir string) error {
	targets, err := o.targets(a)
	if err != nil {
		return err
	}
	provider, err := a.provider(o.out, false)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(a.pipeline, provider)

	w, err := batch.NewWatcher(runner, batch.WatchConfig{
		Dir:       dir,
		Targets:   targets,
		Folder:    o.folder,
		Overwrite: o.overwrite || a.cfg.Output.Overwrite,
		Debounce:  o.debounce,
		OnResult: func(r batch.JobResult) {
			if a.quiet && r.Success {
				return
			}
			status := "ok"
			if !r.Success {
				status = "FAILED: " + apperrors.NewErrorFormatter(false, false).Format(r.Error)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", r.InputPath, status)
		},
	})
	if err != nil {
		return err
	}
	if err := w.Run(cmd.Context()); err != nil {
		return err
	}

	if !a.quiet {
		s := runner.Collector().Summary()
		fmt.Fprintf(cmd.OutOrStdout(), "%d conversions (%.1f%% ok), %d skipped, %d bytes out\n",
			s.Total, s.SuccessRate(), s.Skipped, s.OutputBytes)
	}
	return nil
}
