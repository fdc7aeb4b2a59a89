package cli

import (
	"errors"
	"fmt"
	"os"

	"fyora/internal/config"

	"github.com/spf13/cobra"
)

func newResetCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every user and progress log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all data; pass --yes to confirm")
			}
			n, err := a.users.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d users and their progress logs.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect or create the config file",
		Annotations: map[string]string{skipStore: "true"},
	}
	cmd.AddCommand(newConfigInitCommand(a), newConfigShowCommand(a))
	return cmd
}

func newConfigInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init [PATH]",
		Short:       "Write a config file with default values",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argOrEmpty(args)
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := a.cfgPath
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n%s\n", source, a.cfg.Summary())
			return nil
		},
	}
}
