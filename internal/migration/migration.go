// Package migration applies the schema. Postgres goes through golang-migrate
// over the embedded SQL files; sqlite (local/dev) falls back to gorm
// AutoMigrate plus the partial indexes AutoMigrate cannot express.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/config"
	feeconfigdomain "github.com/nlhtungg/parking-lot/internal/feeconfig/domain"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	paymentdomain "github.com/nlhtungg/parking-lot/internal/payment/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
	subscriptiondomain "github.com/nlhtungg/parking-lot/internal/subscription/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	log = log.Named("migration")
	if cfg.Database.Driver == "postgres" {
		log.Info("applying embedded migrations")
		return runPostgres(gdb)
	}
	log.Info("applying auto-migration")
	return runAutoMigrate(gdb)
}

func runPostgres(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func runAutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&lotdomain.ParkingLot{},
		&sessiondomain.ParkingSession{},
		&subscriptiondomain.MonthlySub{},
		&feeconfigdomain.FeeConfig{},
		&paymentdomain.Payment{},
	); err != nil {
		return err
	}
	// Partial unique indexes backing the at-most-one-active invariants.
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_sessions_active
			ON parking_sessions (lot_id, license_plate) WHERE checked_out_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_pending
			ON payments (session_id) WHERE method = 'PENDING'`,
	}
	for _, stmt := range statements {
		if err := gdb.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
