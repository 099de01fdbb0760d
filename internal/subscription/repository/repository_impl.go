package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/subscription/domain"
)

type subRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &subRepo{db: db}
}

func (r *subRepo) Insert(ctx context.Context, db *gorm.DB, sub *domain.MonthlySub) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(sub).Error
}

func (r *subRepo) FindActive(ctx context.Context, db *gorm.DB, plate string, onDate time.Time) (*domain.MonthlySub, error) {
	if db == nil {
		db = r.db
	}
	var sub domain.MonthlySub
	err := db.WithContext(ctx).
		Where("license_plate = ? AND start_date <= ? AND end_date >= ?", plate, onDate, onDate).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
