// Package db provides the shared gorm handle. The handle is constructed once
// at process start and injected into every repository; nothing reaches for a
// package-level singleton.
package db

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"

	"github.com/nlhtungg/parking-lot/internal/config"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

func New(cfg config.Config, log *zap.Logger, lc fx.Lifecycle) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.DSN == "" {
			return nil, errors.New("database.dsn is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		return nil, errors.New("unsupported database driver: " + cfg.Database.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Connection-pool stats land on the default prometheus registry, which
	// the server's /metrics handler gathers alongside its own.
	if err := gdb.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          "parkinglot",
		RefreshInterval: 15,
	})); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			log.Info("closing database connection")
			return sqlDB.Close()
		},
	})

	return gdb, nil
}
