package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leeforge/imagekit/media/batch"
	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/media/storage"
)

type convertOptions struct {
	targetFlags
	out       string
	folder    string
	overwrite bool
	dryRun    bool
}

type convertReport struct {
	Input   string             `json:"input"`
	DryRun  bool               `json:"dryRun,omitempty"`
	Outputs []batch.OutputInfo `json:"outputs"`
	Skipped []processor.Format `json:"skipped,omitempty"`
}

func newConvertCmd(a *app) *cobra.Command {
	o := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert one image",
		Long: `Convert one image into one or more formats.

With a single --format the conversion fails if that format cannot be encoded
in this build. With several formats the unavailable ones are skipped.`,
		Example: `  imagekit convert photo.jpg --format webp --quality 0.8
  imagekit convert photo.jpg --preset discover --out public
  imagekit convert logo.png --format ico --icon-sizes 16,32,48,64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a, args[0])
		},
	}

	o.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output directory (default from output.storage.basePath)")
	cmd.Flags().StringVar(&o.folder, "folder", "", "sub-folder inside the output directory")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "replace existing files instead of numbering new ones")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "convert without writing any file")
	return cmd
}

func (o *convertOptions) run(cmd *cobra.Command, a *app, input string) error {
	ctx := cmd.Context()

	targets, err := o.targets(a)
	if err != nil {
		return err
	}
	source, err := a.pipeline.ReadSource(input)
	if err != nil {
		return err
	}

	var outputs []*processor.EncodedOutput
	if len(targets) == 1 {
		out, err := a.pipeline.Reencode(ctx, source, targets[0])
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	} else {
		outputs, err = a.pipeline.Variants(ctx, source, targets)
		if err != nil {
			return err
		}
	}

	provider, err := a.provider(o.out, o.dryRun)
	if err != nil {
		return err
	}

	report := convertReport{Input: input, DryRun: o.dryRun, Outputs: []batch.OutputInfo{}}
	produced := make(map[processor.Format]bool, len(outputs))
	for _, out := range outputs {
		saved, err := provider.Save(ctx, storage.SaveInput{
			File:      out.Reader(),
			Filename:  processor.DownloadName(input, out.Format),
			Folder:    o.folder,
			Overwrite: o.overwrite || a.cfg.Output.Overwrite,
			Metadata: map[string]interface{}{
				"source": input,
				"mime":   out.MIME,
			},
		})
		if err != nil {
			return err
		}
		produced[out.Format] = true
		report.Outputs = append(report.Outputs, batch.OutputInfo{
			Format: out.Format,
			Path:   saved.Path,
			Size:   saved.Size,
			Width:  out.Width,
			Height: out.Height,
		})
	}
	for _, t := range targets {
		if !produced[t.Format] {
			report.Skipped = append(report.Skipped, t.Format)
		}
	}

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	if a.quiet {
		return nil
	}
	verb := "wrote"
	if o.dryRun {
		verb = "would write"
	}
	w := cmd.OutOrStdout()
	for _, out := range report.Outputs {
		fmt.Fprintf(w, "%s %s (%s %dx%d, %d bytes)\n", verb, out.Path, out.Format, out.Width, out.Height, out.Size)
	}
	for _, f := range report.Skipped {
		fmt.Fprintf(w, "skipped %s: encoder unavailable in this build\n", f)
	}
	return nil
}
