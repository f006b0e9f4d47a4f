package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		source string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.OpenDB(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			var recs []storage.ExportRecord
			if source != "" {
				recs, err = storage.ListExportsBySource(db, source)
			} else {
				recs, err = storage.ListExports(db, limit)
			}
			if err != nil {
				return fmt.Errorf("list exports: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(w, "No exports found.")
				return nil
			}
			fmt.Fprintf(w, "%-4s %-9s %6s %5s %8s  %-14s  %s\n", "ID", "FORMAT", "GROUPS", "TABS", "SIZE", "CREATED", "OUTPUT")
			for _, r := range recs {
				fmt.Fprintf(w, "%-4d %-9s %6d %5d %8s  %-14s  %s\n",
					r.ID,
					r.Format,
					r.GroupCount,
					r.TabCount,
					humanize.Bytes(uint64(r.SizeBytes)),
					humanize.Time(r.CreatedAt),
					r.OutputPath,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of exports to show")
	cmd.Flags().StringVar(&source, "source", "", "only show exports of this session file")
	return cmd
}
