package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"capa/internal/daemonctl"
	"capa/internal/envfile"
	"capa/internal/logging"
	"capa/internal/paths"
	"capa/internal/server"
	"capa/internal/settings"
	"capa/internal/store"
)

func newServeCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capa server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := loadServerEnv(); err != nil {
				return err
			}

			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			logger, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lock, err := daemonctl.NewLock()
			if err != nil {
				return err
			}
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() {
				_ = lock.Release()
			}()

			pidPath, err := daemonctl.WritePIDFile()
			if err != nil {
				return err
			}
			defer func() {
				_ = daemonctl.RemovePIDFile()
			}()

			st, err := store.Open(doc)
			if err != nil {
				logger.Error("open session store", logging.Error(err))
				return err
			}
			defer st.Close()

			if pruned, pruneErr := st.PruneExpired(signalCtx); pruneErr != nil {
				logger.Warn("prune expired sessions", logging.Error(pruneErr))
			} else if pruned > 0 {
				logger.Info("pruned expired sessions", logging.Int("count", int(pruned)))
			}

			srv, err := server.New(doc, st, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if err := srv.Start(signalCtx); err != nil {
				return err
			}
			defer srv.Stop()

			logger.Info("capa server started",
				logging.String("pid_file", pidPath),
				logging.String("database", st.Path()))

			<-signalCtx.Done()
			logger.Info("capa server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	return cmd
}

// loadServerEnv applies <stateDir>/capa.env to the process environment.
// Variables already set in the environment win over the file.
func loadServerEnv() error {
	dir, err := paths.StateDir()
	if err != nil {
		return err
	}
	vars, err := envfile.Load(filepath.Join(dir, "capa.env"))
	if err != nil {
		return fmt.Errorf("load capa.env: %w", err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
