package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leeforge/imagekit/utils"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats and whether this build can encode them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses := a.pipeline.Encoders()
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tEXT\tMIME\tLOSSY\tAVAILABLE")
			for _, s := range statuses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", utils.UpperName(string(s.Format)), s.Extension, s.MIME, s.Lossy, s.Available)
			}
			return tw.Flush()
		},
	}
}
