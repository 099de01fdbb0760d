package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/checkout"
	"github.com/nlhtungg/parking-lot/internal/clock"
	"github.com/nlhtungg/parking-lot/internal/config"
	"github.com/nlhtungg/parking-lot/internal/feeconfig"
	"github.com/nlhtungg/parking-lot/internal/lot"
	"github.com/nlhtungg/parking-lot/internal/migration"
	"github.com/nlhtungg/parking-lot/internal/observability"
	"github.com/nlhtungg/parking-lot/internal/payment"
	"github.com/nlhtungg/parking-lot/internal/seed"
	"github.com/nlhtungg/parking-lot/internal/server"
	"github.com/nlhtungg/parking-lot/internal/session"
	"github.com/nlhtungg/parking-lot/internal/subscription"
	"github.com/nlhtungg/parking-lot/pkg/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parkinglot",
		Short: "Parking lot session and fee service",
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Apply migrations, then start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		fx.Invoke(func(gdb *gorm.DB, node *snowflake.Node) error {
			return seed.EnsureDefaults(gdb, node)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		fx.Provide(clock.New),
		db.Module,
		lot.Module,
		session.Module,
		subscription.Module,
		feeconfig.Module,
		payment.Module,
		checkout.Module,
		server.Module,
	).Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
