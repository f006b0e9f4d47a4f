package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/firefox"
)

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List Firefox profiles and their session files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := firefox.DiscoverProfiles()
			if err != nil {
				return fmt.Errorf("discover profiles: %w", err)
			}
			w := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(w, "No Firefox profiles found.")
				return nil
			}
			for _, p := range profiles {
				suffix := ""
				if p.IsDefault {
					suffix = " [default]"
				}
				fmt.Fprintf(w, "%s (%s)%s\n", p.Name, p.Path, suffix)
				cands := firefox.SessionCandidates(p)
				if len(cands) == 0 {
					fmt.Fprintln(w, "  no session files")
				}
				for _, c := range cands {
					fmt.Fprintf(w, "  %-40s %s\n", c.Path, humanize.Time(c.ModTime))
				}
			}
			return nil
		},
	}
}
