package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"capa/internal/paths"
	"capa/internal/skills"
)

func newSkillCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Manage skill definitions in the state directory",
	}
	cmd.AddCommand(newSkillListCommand())
	cmd.AddCommand(newSkillNewCommand())
	cmd.AddCommand(newSkillShowCommand())
	return cmd
}

func newSkillListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := skills.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No skills installed")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, skill := range list {
				rows = append(rows, []string{skill.Name, skill.Version, skill.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Version", "Description"}, rows))
			return nil
		},
	}
}

func newSkillNewCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new skill definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := paths.EnsureStateDir(); err != nil {
				return err
			}
			skill, err := skills.Scaffold(args[0], description)
			if err != nil {
				return err
			}
			path, err := skills.Path(skill.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Skill description")
	return cmd
}

func newSkillShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a skill definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skill, err := skills.Load(args[0])
			if err != nil {
				return err
			}
			data, err := skill.Format()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
