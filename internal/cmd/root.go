package cmd

import (
	"database/sql"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/applog"
	"github.com/lotas/tabsalvage/internal/config"
	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/storage"
	"github.com/lotas/tabsalvage/internal/tui"
)

// app holds what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	profile    string
	logLevel   string
	cfg        *config.Config
}

func (a *app) pipelineOptions() pipeline.Options {
	return pipeline.Options{MaxRatio: a.cfg.MaxRatio}
}

// openDB opens the export history. Failures are logged and yield nil so an
// unwritable data directory never blocks an export.
func (a *app) openDB() *sql.DB {
	db, err := storage.OpenDB(a.cfg.DBPath)
	if err != nil {
		applog.Error("storage.open", err, "path", a.cfg.DBPath)
		return nil
	}
	return db
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tabsalvage [session-file]",
		Short: "Recover tabs from Firefox session files",
		Long: `Recover the windows and tabs stored in a Firefox session file
(recovery.jsonlz4, previous.jsonlz4, sessionstore.jsonlz4) and save them as
a list of links.

Without a subcommand an interactive TUI starts. Give it a session file or
pick one from the discovered Firefox profiles.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if !cmd.Flags().Changed("config") {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if a.profile != "" {
				cfg.Profile = a.profile
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			if err := applog.InitLevel(cfg.LogDir, cfg.LogLevel); err != nil {
				return fmt.Errorf("init log: %w", err)
			}
			applog.Info("cmd.start", "command", cmd.Name())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			applog.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tabsalvage/config.toml)")
	flags.StringVar(&a.profile, "profile", "", "Firefox profile name (default: the default profile)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newExportCmd(a),
		newGroupsCmd(a),
		newProfilesCmd(a),
		newFormatsCmd(),
		newHistoryCmd(a),
		newPackCmd(a),
		newUnpackCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func (a *app) runTUI(args []string) error {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		applog.Error("profiles.discover", err)
	}

	input := ""
	if len(args) == 1 {
		input = args[0]
	} else if a.cfg.Profile != "" {
		cand, err := candidateForProfile(profiles, a.cfg.Profile)
		if err != nil {
			return err
		}
		input = cand.Path
	}

	db := a.openDB()
	if db != nil {
		defer db.Close()
	}

	model := tui.NewModel(tui.Options{
		Profiles:  profiles,
		InputPath: input,
		Output:    a.cfg.Output(),
		Fallback:  a.cfg.Fallback(),
		Dedupe:    a.cfg.DropDuplicates,
		Pipeline:  a.pipelineOptions(),
		DB:        db,
		Profile:   a.cfg.Profile,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
