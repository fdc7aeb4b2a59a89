package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"fyora/internal/domain"

	"github.com/spf13/cobra"
)

const displayTime = "2006-01-02 15:04"

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUserAddCommand(a),
		newUserListCommand(a),
		newUserShowCommand(a),
		newUserUpdateCommand(a),
		newUserDeleteCommand(a),
	)
	return cmd
}

func newUserAddCommand(a *app) *cobra.Command {
	var nickname, email string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := domain.NewUser(nickname, email)
			if err := a.users.AddUser(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d added: %s <%s>\n", user.ID, user.Nickname, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname (unique, case-insensitive)")
	cmd.Flags().StringVar(&email, "email", "", "email address (unique, case-insensitive)")
	cmd.MarkFlagRequired("nickname")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newUserListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.users.GetAllUsers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNICKNAME\tEMAIL\tCREATED\tLOGS\tLATEST DAYS")
			for _, u := range users {
				latest := "-"
				if l := u.LatestLog(); l != nil {
					latest = strconv.Itoa(l.DaysWithoutGambling)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
					u.ID, u.Nickname, u.Email, u.CreatedAt.Local().Format(displayTime), u.LogCount(), latest)
			}
			return tw.Flush()
		},
	}
}

func newUserShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a user and their progress logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, found, err := a.users.GetUserByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !found {
				notFound(out, id)
				return nil
			}

			fmt.Fprintf(out, "ID:       %d\n", user.ID)
			fmt.Fprintf(out, "Nickname: %s\n", user.Nickname)
			fmt.Fprintf(out, "Email:    %s\n", user.Email)
			fmt.Fprintf(out, "Created:  %s\n", user.CreatedAt.Local().Format(displayTime))

			logs, _, err := a.users.ProgressLogs(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Progress logs (%d):\n", len(logs))
			return writeLogs(out, logs)
		},
	}
}

func newUserUpdateCommand(a *app) *cobra.Command {
	var nickname, email string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a user's nickname and optionally email",
		Long:  "Change a user's nickname. The email is only changed when --email is given and not blank.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			outcome, err := a.users.UpdateUser(cmd.Context(), id, nickname, email)
			if err != nil {
				return err
			}
			if !outcome.Applied() {
				notFound(cmd.OutOrStdout(), id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d updated.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "new nickname")
	cmd.Flags().StringVar(&email, "email", "", "new email (blank keeps the current one)")
	cmd.MarkFlagRequired("nickname")
	return cmd
}

func newUserDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user and all of their progress logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			outcome, err := a.users.DeleteUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !outcome.Applied() {
				notFound(cmd.OutOrStdout(), id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted.\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func notFound(w io.Writer, id int64) {
	fmt.Fprintf(w, "No user with id %d.\n", id)
}

func writeLogs(w io.Writer, logs []*domain.ProgressLog) error {
	if len(logs) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tDATE\tDAYS\tACHIEVEMENT")
	for _, l := range logs {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%s\n", l.ID, formatLogDate(l.LogDate), l.DaysWithoutGambling, l.Achievement)
	}
	return tw.Flush()
}

func formatLogDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(displayTime)
}
