package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capa/internal/auth"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect stored provider credentials",
	}
	cmd.AddCommand(newAuthListCommand())
	cmd.AddCommand(newAuthRemoveCommand())
	return cmd
}

func newAuthListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers with stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := auth.List()
			if err != nil {
				return err
			}
			if len(creds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored credentials")
				return nil
			}

			rows := make([][]string, 0, len(creds))
			for _, c := range creds {
				expiry := "-"
				if !c.Token.Expiry.IsZero() {
					expiry = c.Token.Expiry.Local().Format(time.RFC3339)
				}
				rows = append(rows, []string{
					c.Metadata.Provider,
					c.Metadata.AccountID,
					strings.Join(c.Metadata.Scopes, " "),
					expiry,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Provider", "Account", "Scopes", "Token expiry"}, rows))
			return nil
		},
	}
}

func newAuthRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <provider>",
		Short: "Remove stored credentials for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %s\n", args[0])
			return nil
		},
	}
}
