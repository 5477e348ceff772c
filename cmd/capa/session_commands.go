package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"capa/internal/settings"
	"capa/internal/store"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and prune API sessions",
	}
	cmd.AddCommand(newSessionListCommand())
	cmd.AddCommand(newSessionPruneCommand())
	return cmd
}

func openStore() (*store.Store, error) {
	doc, err := settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return store.Open(doc)
}

func newSessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions")
				return nil
			}

			now := time.Now().UTC()
			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				state := "active"
				if session.Expired(now) {
					state = "expired"
				}
				rows = append(rows, []string{
					session.ID,
					state,
					session.CreatedAt.Local().Format(time.RFC3339),
					session.ExpiresAt.Local().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "State", "Created", "Expires"}, rows))
			return nil
		},
	}
}

func newSessionPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			pruned, err := st.PruneExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired session(s)\n", pruned)
			return nil
		},
	}
}
