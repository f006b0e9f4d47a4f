package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/applog"
	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/storage"
	"github.com/lotas/tabsalvage/internal/types"
)

type exportFlags struct {
	format       string
	out          string
	open         string
	closed       string
	overwrite    bool
	createFolder bool
	dedupe       bool
	quiet        bool
	noHistory    bool
}

func newExportCmd(a *app) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export [session-file]",
		Short: "Write the selected windows as a list of links",
		Long: `Export reads a session file and renders the selected windows.

Windows are addressed by their index inside the open or closed list, as shown
by "tabsalvage groups". By default every open window and no closed window is
exported. Without --out the result goes to stdout.`,
		Example: `  tabsalvage export --format html --out links.html
  tabsalvage export recovery.jsonlz4 --open 0,2 --closed all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", "", "output format (default from config, or the --out extension)")
	fl.StringVarP(&f.out, "out", "o", "", "output file (default: stdout)")
	fl.StringVar(&f.open, "open", "all", `open windows to export: "all", "none" or indexes like 0,2`)
	fl.StringVar(&f.closed, "closed", "none", `closed windows to export: "all", "none" or indexes`)
	fl.BoolVar(&f.overwrite, "overwrite", false, "replace an existing output file")
	fl.BoolVar(&f.createFolder, "create-folder", false, "create missing parent directories")
	fl.BoolVar(&f.dedupe, "dedupe", false, "skip tabs repeating a page already listed")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not print progress to stderr")
	fl.BoolVar(&f.noHistory, "no-history", false, "do not record the export in the history database")
	return cmd
}

func (a *app) exportOptions(cmd *cobra.Command, f *exportFlags) (export.OutputOptions, error) {
	out := a.cfg.Output()
	if cmd.Flags().Changed("overwrite") {
		out.Overwrite = f.overwrite
	}
	if cmd.Flags().Changed("create-folder") {
		out.CreateFolder = f.createFolder
	}
	switch {
	case f.format != "":
		format, err := export.ParseFormat(f.format)
		if err != nil {
			return out, err
		}
		out.Format = format
	case f.out != "":
		if format, ok := export.FormatFromPath(f.out); ok {
			out.Format = format
		}
	}
	return out, nil
}

func parseSelection(open, closed string) (selection.GenerateOptions, error) {
	o, err := selection.ParseGroupSet(open)
	if err != nil {
		return selection.GenerateOptions{}, fmt.Errorf("--open: %w", err)
	}
	c, err := selection.ParseGroupSet(closed)
	if err != nil {
		return selection.GenerateOptions{}, fmt.Errorf("--closed: %w", err)
	}
	return selection.GenerateOptions{OpenGroupIndexes: o, ClosedGroupIndexes: c}, nil
}

// warnUnknownIndexes reports selected indexes that name no window.
func warnUnknownIndexes(w io.Writer, groups types.AllTabGroups, sel selection.GenerateOptions) {
	for _, p := range types.Partitions() {
		set := sel.Set(p)
		if set.IsAll() {
			continue
		}
		for _, idx := range set.Indexes() {
			if int(idx) >= groups.Len(p) {
				fmt.Fprintf(w, "warning: no %s window with index %d\n", p, idx)
			}
		}
	}
}

func (a *app) runExport(cmd *cobra.Command, args []string, f *exportFlags) error {
	out, err := a.exportOptions(cmd, f)
	if err != nil {
		return err
	}
	sel, err := parseSelection(f.open, f.closed)
	if err != nil {
		return err
	}
	sel.DropDuplicates = a.cfg.DropDuplicates
	if cmd.Flags().Changed("dedupe") {
		sel.DropDuplicates = f.dedupe
	}
	if f.out == "" && out.Format.Binary() {
		return fmt.Errorf("format %s needs --out", out.Format.AsString())
	}

	path, err := a.resolveInput(args)
	if err != nil {
		return err
	}

	var progress io.Writer = cmd.ErrOrStderr()
	if f.quiet {
		progress = nil
	}
	rec, groups, err := a.loadSession(cmd.Context(), path, progress)
	if err != nil {
		return err
	}
	warnUnknownIndexes(cmd.ErrOrStderr(), groups, sel)

	if f.out == "" {
		data, err := export.Render(rec.Tree(), groups, sel, out.Format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := pipeline.Save(rec, groups, sel, f.out, out, statusPrinter(progress)); err != nil {
		return err
	}
	if !f.noHistory {
		a.recordExport(rec, groups, sel, f.out, out.Format)
	}
	return nil
}

func (a *app) recordExport(rec *pipeline.FileRecord, groups types.AllTabGroups, sel selection.GenerateOptions, path string, format export.Format) {
	db := a.openDB()
	if db == nil {
		return
	}
	defer db.Close()
	entry := pipeline.HistoryEntry(rec, groups, sel, path, format, a.cfg.Profile)
	if _, err := storage.RecordExport(db, entry); err != nil {
		applog.Error("history.record", err, "path", path)
	}
}
