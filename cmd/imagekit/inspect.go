package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leeforge/imagekit/media/processor"
)

type inspectReport struct {
	Input string `json:"input"`
	processor.ImageInfo
	Bytes int `json:"bytes"`
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print type and dimensions without decoding pixels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]inspectReport, 0, len(args))
			for _, path := range args {
				data, err := a.pipeline.ReadSource(path)
				if err != nil {
					return err
				}
				info, err := a.pipeline.Inspect(data)
				if err != nil {
					return err
				}
				reports = append(reports, inspectReport{Input: path, ImageInfo: info, Bytes: len(data)})
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %dx%d, %d bytes\n", r.Input, r.MIME, r.Width, r.Height, r.Bytes)
			}
			return nil
		},
	}
}
