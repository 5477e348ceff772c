package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"capa/internal/daemonctl"
	"capa/internal/settings"
	"capa/internal/store"
)

const stopGracePeriod = 10 * time.Second

func newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the capa server in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, running, err := daemonctl.Status()
			if err != nil {
				return err
			}
			if running {
				fmt.Fprintf(cmd.OutOrStdout(), "Server already running (pid %d)\n", pid)
				return nil
			}

			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			proc := exec.Command(executable, "serve", "--log-format", "json")
			if err := proc.Start(); err != nil {
				return fmt.Errorf("launch server: %w", err)
			}
			if err := proc.Process.Release(); err != nil {
				return fmt.Errorf("detach server: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server start requested")
			return nil
		},
	}
}

func newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running capa server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := daemonctl.Stop(stopGracePeriod)
			if err != nil {
				if errors.Is(err, daemonctl.ErrNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Server not running")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server stopped (pid %d)\n", pid)
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and state directory status",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			pid, running, err := daemonctl.Status()
			if err != nil {
				return err
			}
			state := "stopped"
			pidValue := "-"
			if running {
				state = "running"
				pidValue = strconv.Itoa(pid)
			}

			dbPath, err := settings.DatabasePath(doc)
			if err != nil {
				return err
			}

			sessionCount := "-"
			if st, openErr := store.Open(doc); openErr == nil {
				if stats, statsErr := st.Stats(context.Background()); statsErr == nil {
					sessionCount = fmt.Sprintf("%d active, %d expired", stats.Active, stats.Expired)
				}
				_ = st.Close()
			}

			rows := [][]string{
				{"Server", state},
				{"PID", pidValue},
				{"Bind", fmt.Sprintf("%s:%d", doc.Server.Host, doc.Server.Port)},
				{"Database", dbPath},
				{"Sessions", sessionCount},
				{"Settings version", doc.Version},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
}
