package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lotas/tabsalvage/internal/fileio"
	"github.com/lotas/tabsalvage/internal/firefox"
)

type packFlags struct {
	overwrite    bool
	createFolder bool
	noValidate   bool
}

func (f *packFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace an existing output file")
	cmd.Flags().BoolVar(&f.createFolder, "create-folder", false, "create missing parent directories")
}

func (f *packFlags) writeOptions() fileio.WriteOptions {
	return fileio.WriteOptions{Overwrite: f.overwrite, CreateFolder: f.createFolder}
}

func newPackCmd(a *app) *cobra.Command {
	f := &packFlags{}
	cmd := &cobra.Command{
		Use:   "pack <session.json> <out.jsonlz4>",
		Short: "Wrap a plain session JSON file in a mozlz4 container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := fileio.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !f.noValidate {
				if _, err := firefox.ParseSession(plain); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
			}
			data, err := firefox.CompressMozLz4(plain)
			if err != nil {
				return err
			}
			if err := fileio.WriteAtomic(args[1], data, f.writeOptions()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s from %s)\n", args[1], humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(len(plain))))
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&f.noValidate, "no-validate", false, "skip checking that the input is a session document")
	return cmd
}

func newUnpackCmd(a *app) *cobra.Command {
	f := &packFlags{}
	cmd := &cobra.Command{
		Use:   "unpack <session.jsonlz4> [out.json]",
		Short: "Decompress a mozlz4 session file to plain JSON",
		Long:  "Unpack decodes a mozlz4 container. Without an output path the JSON goes to stdout.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := fileio.ReadFile(args[0])
			if err != nil {
				return err
			}
			plain, err := firefox.DecompressMozLz4Limit(data, a.cfg.MaxRatio)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if len(args) == 1 {
				_, err = cmd.OutOrStdout().Write(plain)
				return err
			}
			return fileio.WriteAtomic(args[1], plain, f.writeOptions())
		},
	}
	f.bind(cmd)
	return cmd
}
