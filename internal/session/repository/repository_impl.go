package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/session/domain"
)

type sessionRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Insert(ctx context.Context, db *gorm.DB, session *domain.ParkingSession) error {
	if db == nil {
		db = r.db
	}
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		// The partial unique index on (lot_id, license_plate) for active
		// sessions closes the duplicate check-in race.
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSession
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (r *sessionRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ParkingSession, error) {
	if db == nil {
		db = r.db
	}
	var session domain.ParkingSession
	if err := db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindActiveByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) ([]domain.ParkingSession, error) {
	if db == nil {
		db = r.db
	}
	var sessions []domain.ParkingSession
	err := db.WithContext(ctx).
		Where("lot_id = ? AND checked_out_at IS NULL", lotID).
		Order("checked_in_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) FindActiveByLotAndPlate(ctx context.Context, db *gorm.DB, lotID snowflake.ID, plate string) (*domain.ParkingSession, error) {
	if db == nil {
		db = r.db
	}
	var session domain.ParkingSession
	err := db.WithContext(ctx).
		Where("lot_id = ? AND license_plate = ? AND checked_out_at IS NULL", lotID, plate).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Complete(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).Model(&domain.ParkingSession{}).
		Where("id = ? AND checked_out_at IS NULL", id).
		UpdateColumn("checked_out_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
