package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export all users with their logs (JSON, or YAML for .yaml/.yml)",
		Long: "Export all users with their progress logs. A bare file name is written under " +
			"the export directory; absolute paths are used as given. Existing files are overwritten.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.reconcile.ExportUsers(cmd.Context(), argOrEmpty(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Users exported to %s\n", path)
			return nil
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import users, skipping any whose nickname or email already exists",
		Long: "Import users from a JSON or YAML file. The file is looked up as an absolute path, " +
			"under the root directory, as the default import file, then beside the binary.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			users, path := a.reconcile.ImportUsers(argOrEmpty(args))
			if len(users) == 0 {
				fmt.Fprintln(out, "No users to import.")
				return nil
			}

			result, err := a.reconcile.MergeUsers(cmd.Context(), users)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d of %d users from %s (%d skipped).\n",
				result.Inserted, result.Read, path, result.Skipped)
			for _, r := range result.Rejected {
				fmt.Fprintf(out, "  rejected %s <%s>: %s\n", r.Nickname, r.Email, r.Reason)
			}
			return nil
		},
	}
}

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [FILE]",
		Short: "Write a summary report with user and progress log totals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.users.Stats(cmd.Context())
			if err != nil {
				return err
			}
			path, err := a.reconcile.ExportSummary(argOrEmpty(args), stats.Users, stats.ProgressLogs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Summary (%d users, %d progress logs) written to %s\n",
				stats.Users, stats.ProgressLogs, path)
			return nil
		},
	}
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
