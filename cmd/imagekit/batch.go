package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/media/batch"
	"github.com/leeforge/imagekit/metrics"
	"github.com/leeforge/imagekit/utils"
)

type batchOptions struct {
	targetFlags
	manifest    string
	out         string
	folder      string
	overwrite   bool
	dryRun      bool
	metricsFile string
}

type jobReport struct {
	batch.JobResult
	Error string `json:"error,omitempty"`
}

type batchReport struct {
	Jobs    []jobReport     `json:"jobs"`
	Summary metrics.Summary `json:"summary"`
}

func newBatchCmd(a *app) *cobra.Command {
	o := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [FILES...]",
		Short: "Convert many images, one after another",
		Long: `Convert every FILE with the same targets, or run the jobs of a YAML
manifest. A failing file does not stop the batch; the exit status is non-zero
when any job failed.`,
		Example: `  imagekit batch *.png --format webp --format jpeg
  imagekit batch --manifest jobs.yaml --metrics-file metrics.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a, args)
		},
	}

	o.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.manifest, "manifest", "m", "", "YAML manifest describing the jobs")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output directory (default from the manifest or config)")
	cmd.Flags().StringVar(&o.folder, "folder", "", "sub-folder inside the output directory")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "replace existing files instead of numbering new ones")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "convert without writing any file")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write conversion metrics in Prometheus text format")
	return cmd
}

// jobs builds the job list from the manifest or from the file arguments.
// It also returns the manifest's output directory, if any.
func (o *batchOptions) jobs(a *app, files []string) ([]batch.Job, string, error) {
	overwrite := o.overwrite || a.cfg.Output.Overwrite

	if o.manifest != "" {
		if len(files) > 0 {
			return nil, "", apperrors.NewValidation("pass either FILES or --manifest, not both")
		}
		m, err := batch.LoadManifest(o.manifest)
		if err != nil {
			return nil, "", err
		}
		m.Defaults = m.Defaults.Merge(a.cfg.Defaults)
		jobs, err := m.BuildJobs()
		if err != nil {
			return nil, "", err
		}
		for i := range jobs {
			jobs[i].Overwrite = jobs[i].Overwrite || overwrite
		}
		return jobs, m.OutputDir(), nil
	}

	if len(files) == 0 {
		return nil, "", apperrors.NewValidation("no input files; pass FILES or --manifest")
	}
	targets, err := o.targets(a)
	if err != nil {
		return nil, "", err
	}
	jobs := make([]batch.Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, batch.Job{
			InputPath: f,
			Targets:   targets,
			Folder:    o.folder,
			Overwrite: overwrite,
		})
	}
	return jobs, "", nil
}

func (o *batchOptions) run(cmd *cobra.Command, a *app, files []string) error {
	ctx := cmd.Context()

	jobs, manifestOut, err := o.jobs(a, files)
	if err != nil {
		return err
	}
	out := o.out
	if out == "" {
		out = manifestOut
	}
	provider, err := a.provider(out, o.dryRun)
	if err != nil {
		return err
	}

	var opts []batch.Option
	if !a.jsonOut && !a.quiet {
		opts = append(opts, batch.WithProgress(progressPrinter(cmd.ErrOrStderr())))
	}
	runner := batch.NewRunner(a.pipeline, provider, opts...)

	results, runErr := runner.Run(ctx, jobs)
	if runErr != nil && errors.Is(runErr, ctx.Err()) {
		return runErr
	}

	if o.metricsFile != "" {
		if err := writeMetricsFile(o.metricsFile, runner.Collector()); err != nil {
			return err
		}
	}

	report := batchReport{Jobs: make([]jobReport, 0, len(results)), Summary: runner.Collector().Summary()}
	for _, r := range results {
		jr := jobReport{JobResult: r}
		if r.Error != nil {
			jr.Error = apperrors.NewErrorFormatter(false, true).Format(r.Error)
		}
		report.Jobs = append(report.Jobs, jr)
	}

	if a.jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else if !a.quiet {
		printSummary(cmd.OutOrStdout(), report)
	}
	return runErr
}

func progressPrinter(w io.Writer) func(batch.Progress) {
	return func(p batch.Progress) {
		status := "ok"
		if !p.Last.Success {
			status = "FAILED: " + apperrors.NewErrorFormatter(false, false).Format(p.Last.Error)
		}
		fmt.Fprintf(w, "[%d/%d %3.0f%%] %s %s\n", p.Completed+p.Failed, p.Total, p.Percentage, p.Last.InputPath, status)
	}
}

func printSummary(w io.Writer, report batchReport) {
	var ok, failed int
	for _, j := range report.Jobs {
		if j.Success {
			ok++
		} else {
			failed++
		}
	}
	s := report.Summary
	fmt.Fprintf(w, "%d jobs: %d succeeded, %d failed\n", len(report.Jobs), ok, failed)
	fmt.Fprintf(w, "%d conversions (%.1f%% ok), %d skipped, %d bytes in, %d bytes out\n",
		s.Total, s.SuccessRate(), s.Skipped, s.InputBytes, s.OutputBytes)
	if len(s.Formats) == 0 {
		return
	}

	formats := make([]string, 0, len(s.Formats))
	for f := range s.Formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tOK\tFAILED\tSKIPPED\tBYTES OUT\tAVG")
	for _, f := range formats {
		fs := s.Formats[f]
		name := utils.UpperName(f)
		if name == "" {
			// unreadable inputs never reach a format
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.3fs\n",
			name, fs.Succeeded, fs.Failed, fs.Skipped, fs.OutputBytes, fs.AvgSeconds)
	}
	_ = tw.Flush()
}

func writeMetricsFile(path string, c *metrics.Collector) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, "create metrics file").WithDetail("path", path)
	}
	defer f.Close()
	if err := c.WritePrometheus(f); err != nil {
		return apperrors.Wrap(err, "write metrics").WithDetail("path", path)
	}
	return nil
}
