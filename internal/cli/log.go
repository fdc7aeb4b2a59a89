package cli

import (
	"fmt"

	"fyora/internal/domain"

	"github.com/spf13/cobra"
)

func newLogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage progress logs",
	}
	cmd.AddCommand(newLogAddCommand(a), newLogListCommand(a))
	return cmd
}

func newLogAddCommand(a *app) *cobra.Command {
	var (
		days        int
		achievement string
	)

	cmd := &cobra.Command{
		Use:   "add USER_ID",
		Short: "Record days without gambling for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			log := domain.NewProgressLog(days, achievement)
			outcome, err := a.users.AddProgressLog(cmd.Context(), id, log)
			if err != nil {
				return err
			}
			if !outcome.Applied() {
				notFound(cmd.OutOrStdout(), id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress log %d added for user %d.\n", log.ID, id)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days without gambling")
	cmd.Flags().StringVar(&achievement, "achievement", "", "optional achievement")
	cmd.MarkFlagRequired("days")
	return cmd
}

func newLogListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list USER_ID",
		Short: "List a user's progress logs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			logs, outcome, err := a.users.ProgressLogs(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !outcome.Applied() {
				notFound(cmd.OutOrStdout(), id)
				return nil
			}
			return writeLogs(cmd.OutOrStdout(), logs)
		},
	}
}
