package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/analyzer"
	"github.com/lotas/tabsalvage/internal/types"
)

func newGroupsCmd(a *app) *cobra.Command {
	var (
		quiet     bool
		staleDays int
	)
	cmd := &cobra.Command{
		Use:   "groups [session-file]",
		Short: "List the windows of a session file with their indexes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolveInput(args)
			if err != nil {
				return err
			}
			progress := cmd.ErrOrStderr()
			if quiet {
				progress = nil
			}
			rec, groups, err := a.loadSession(cmd.Context(), path, progress)
			if err != nil {
				return err
			}
			tree := rec.Tree()

			w := cmd.OutOrStdout()
			if len(tree.Windows) == 0 {
				fmt.Fprintln(w, "No windows found.")
				return nil
			}
			fmt.Fprintf(w, "%-7s %5s %5s  %-14s  %s\n", "LIST", "INDEX", "TABS", "LAST USED", "NAME")
			for _, p := range types.Partitions() {
				windows := tree.Partition(p)
				for _, g := range groups.Partition(p) {
					used := "-"
					if int(g.Index) < len(windows) {
						if t := analyzer.LastUsed(*windows[g.Index]); !t.IsZero() {
							used = humanize.Time(t)
						}
					}
					fmt.Fprintf(w, "%-7s %5d %5d  %-14s  %s\n", p, g.Index, g.TabCount, used, g.Name)
				}
			}

			threshold := time.Duration(staleDays) * 24 * time.Hour
			fmt.Fprintf(w, "\n%d tabs, %d duplicates, %d not used for %d days\n",
				tree.TabCount(),
				analyzer.CountDuplicates(tree),
				analyzer.StaleTabs(tree, threshold, time.Now()),
				staleDays,
			)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress to stderr")
	cmd.Flags().IntVar(&staleDays, "stale-days", 7, "days before a tab counts as not used")
	return cmd
}
