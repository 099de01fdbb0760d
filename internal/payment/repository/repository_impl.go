package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/payment/domain"
)

type paymentRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	if db == nil {
		db = r.db
	}
	var payment domain.Payment
	if err := db.WithContext(ctx).First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) FindPendingBySession(ctx context.Context, db *gorm.DB, sessionID snowflake.ID) (*domain.Payment, error) {
	if db == nil {
		db = r.db
	}
	var payment domain.Payment
	err := db.WithContext(ctx).
		Where("session_id = ? AND method = ?", sessionID, domain.MethodPending).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) Finalize(ctx context.Context, db *gorm.DB, id snowflake.ID, method domain.Method, at time.Time) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND method = ?", id, domain.MethodPending).
		UpdateColumns(map[string]any{"method": method, "paid_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
