package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/utils"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named conversion presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets := processor.Presets()
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), presets)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tFORMAT\tSIZE\tFIT\tDESCRIPTION")
			for _, p := range presets {
				size, fit := "source", "-"
				if p.Target.Size != nil {
					size = p.Target.Size.String()
					fit = string(p.Target.Fit)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Name, utils.DisplayName(p.Name), p.Target.Format, size, fit, p.Description)
			}
			return tw.Flush()
		},
	}
}
