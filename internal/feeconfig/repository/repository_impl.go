package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/feeconfig/domain"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
)

type feeConfigRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &feeConfigRepo{db: db}
}

func (r *feeConfigRepo) Insert(ctx context.Context, db *gorm.DB, cfg *domain.FeeConfig) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(cfg).Error
}

func (r *feeConfigRepo) Find(ctx context.Context, db *gorm.DB, ticketType sessiondomain.TicketType, vehicleType lotdomain.VehicleType) (*domain.FeeConfig, error) {
	if db == nil {
		db = r.db
	}
	var cfg domain.FeeConfig
	err := db.WithContext(ctx).
		Where("ticket_type = ? AND vehicle_type = ?", ticketType, vehicleType).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}
