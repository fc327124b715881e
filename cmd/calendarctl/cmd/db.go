package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusevents/calendar/internal/app"
	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/infra"
	"github.com/campusevents/calendar/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newMigrateCommand(logger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Applies db/migrations. Safe to repeat; an up-to-date schema is left alone
and a legacy date-only occurs_at column is widened to a timestamp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := infra.RunMigrations(cfg.MigrationDSN(), cfg.MigrationsDir, logger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newBootstrapCommand(logger func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the bootstrap admin account if no admin exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccess(cmd.Context(), logger(), func(access *service.AccessService) error {
				created, err := access.EnsureBootstrapAdmin(cmd.Context())
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(cmd.OutOrStdout(), "bootstrap admin created; change its password")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "admin accounts already exist; nothing to do")
				}
				return nil
			})
		},
	}
}

// withAccess opens a short-lived pool and hands fn an AccessService over it.
func withAccess(ctx context.Context, logger *slog.Logger, fn func(*service.AccessService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	return fn(accessService(pool, logger))
}

func accessService(pool *pgxpool.Pool, logger *slog.Logger) *service.AccessService {
	_, access := app.Services(app.RouterDeps{
		Pool:   pool,
		Logger: logger,
		Clock:  clock.NewSystem(),
	})
	return access
}
