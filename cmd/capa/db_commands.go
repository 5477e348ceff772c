package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"capa/internal/fileutil"
	"capa/internal/settings"
)

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and back up the capa database",
	}
	cmd.AddCommand(newDBPathCommand())
	cmd.AddCommand(newDBBackupCommand())
	return cmd
}

func newDBPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved database location",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			path, err := settings.DatabasePath(doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newDBBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <destination>",
		Short: "Copy the database to a destination with integrity verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			src, err := settings.DatabasePath(doc)
			if err != nil {
				return err
			}
			if _, err := os.Stat(src); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("no database at %s", src)
				}
				return err
			}
			if err := fileutil.CopyFileVerified(src, args[0]); err != nil {
				return fmt.Errorf("backup database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s\n", src, args[0])
			return nil
		},
	}
}
