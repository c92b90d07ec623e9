package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/mutationwave/entitlements/internal/app"
	"github.com/mutationwave/entitlements/internal/config"
)

// session is what every store-backed subcommand operates on.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	stores *app.Stores
	svcs   *app.Services
}

func (r *session) Close() { r.stores.Close() }

type opener func(ctx context.Context) (*session, error)

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log)

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	return &session{
		cfg:    cfg,
		logger: logger,
		stores: stores,
		svcs:   app.NewServices(logger, cfg, clockwork.NewRealClock(), stores, nil),
	}, nil
}

func newRootCommand(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "platformctl",
		Short:         "Operate the entitlements store",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newMigrateCommand(),
		newSweepKeysCommand(open),
		newUsageCommand(open),
		newSubscriptionCommand(open),
		newRoleCommand(open),
		newAuditCommand(open),
	)
	return root
}

// withSession opens the stores for the duration of fn.
func withSession(open opener, fn func(cmd *cobra.Command, sess *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sess, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()
		return fn(cmd, sess, args)
	}
}
