package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"capa/internal/paths"
	"capa/internal/settings"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit capa settings",
	}
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(newConfigSetCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.SettingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Update a single settings field and save",
		Long: `Update one settings field and persist the document.

Supported fields: server.port, server.host, database.path,
session.timeout_minutes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := settings.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if err := applySetting(doc, args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Save(doc); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}
}

func applySetting(doc *settings.ServerSettings, field, value string) error {
	switch field {
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("server.port must be a TCP port, got %q", value)
		}
		doc.Server.Port = port
	case "server.host":
		if value == "" {
			return fmt.Errorf("server.host must not be empty")
		}
		doc.Server.Host = value
	case "database.path":
		doc.Database.Path = value
	case "session.timeout_minutes":
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("session.timeout_minutes must be a positive integer, got %q", value)
		}
		doc.Session.TimeoutMinutes = minutes
	default:
		return fmt.Errorf("unknown settings field %q", field)
	}
	return nil
}
