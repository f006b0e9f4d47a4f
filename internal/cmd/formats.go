package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/export"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, f := range export.AllFormats() {
				fmt.Fprintf(w, "%-9s %-6s %s\n", f.AsString(), f.Extension(), f)
			}
			return nil
		},
	}
}
