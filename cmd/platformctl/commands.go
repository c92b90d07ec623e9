package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/domain"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return errors.New("database.dsn is required")
			}
			n, err := postgres.Migrate(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", n)
			return nil
		},
	}
}

func newSweepKeysCommand(open opener) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "sweep-keys",
		Short: "Delete purchase idempotency keys older than the retention window",
		Args:  cobra.NoArgs,
		RunE: withSession(open, func(cmd *cobra.Command, sess *session, _ []string) error {
			retention := olderThan
			if retention == 0 {
				retention = sess.cfg.Idempotency.Retention
			}
			if retention <= 0 {
				return errors.New("no retention configured; pass --older-than")
			}

			n, err := sess.svcs.Keys.Sweep(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d idempotency key(s) older than %s.\n", n, retention)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention window (default: idempotency.retention)")
	return cmd
}

func newUsageCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect or reset a user's quota usage",
	}

	var limit int
	history := &cobra.Command{
		Use:   "history <user-id>",
		Short: "List the user's most recent mutations",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
			recs, err := sess.svcs.Usage.MutationHistory(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tACTION\tRESOURCE")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Timestamp.Format(time.RFC3339), r.Action, r.Resource)
			}
			return tw.Flush()
		}),
	}
	history.Flags().IntVar(&limit, "limit", 20, "number of records")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <user-id>",
			Short: "Print the user's usage for the current period",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
				u, err := sess.svcs.Usage.GetUsage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			}),
		},
		&cobra.Command{
			Use:   "reset <user-id>",
			Short: "Start a fresh zeroed usage period",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
				u, err := sess.svcs.Usage.ResetUsage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			}),
		},
		history,
	)
	return cmd
}

func newSubscriptionCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Inspect or change a user's subscription",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <user-id>",
			Short: "Print the user's subscription",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
				s, err := sess.svcs.Subscriptions.GetSubscription(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			}),
		},
		&cobra.Command{
			Use:   "upgrade <user-id> <tier>",
			Short: "Move the user to a tier, starting a fresh period and resetting usage",
			Args:  cobra.ExactArgs(2),
			RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
				tier := domain.Tier(args[1])
				if !tier.IsValid() {
					return fmt.Errorf("unknown tier %q", args[1])
				}
				s, err := sess.svcs.Subscriptions.Upgrade(cmd.Context(), args[0], tier)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			}),
		},
		&cobra.Command{
			Use:   "cancel <user-id>",
			Short: "Cancel the user's paid subscription",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
				s, err := sess.svcs.Subscriptions.Cancel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			}),
		},
	)
	return cmd
}

func newRoleCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage user roles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <email> <role>",
		Short: "Assign a role to the user with the given email",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(open, func(cmd *cobra.Command, sess *session, args []string) error {
			u, err := sess.stores.Users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := sess.svcs.Users.AssignRole(cmd.Context(), u.ID, domain.Role(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q is now %s.\n", updated.Email, updated.Role)
			return nil
		}),
	})
	return cmd
}

func newAuditCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit log",
	}

	var (
		limit  int
		userID string
		action string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print the newest audit entries",
		Args:  cobra.NoArgs,
		RunE: withSession(open, func(cmd *cobra.Command, sess *session, _ []string) error {
			entries, total, err := sess.svcs.Audit.List(cmd.Context(), domain.AuditFilter{
				UserID: userID,
				Action: domain.AuditAction(action),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tUSER\tROLE\tACTION\tTARGET")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.UserName, e.Role, e.Action, e.TargetResource)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d entries\n", len(entries), total)
			return nil
		}),
	}
	tail.Flags().IntVar(&limit, "limit", 20, "number of entries")
	tail.Flags().StringVar(&userID, "user", "", "only entries by this user id")
	tail.Flags().StringVar(&action, "action", "", "only entries with this action")

	cmd.AddCommand(tail)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
