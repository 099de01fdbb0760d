package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/lot/domain"
)

type lotRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &lotRepo{db: db}
}

func (r *lotRepo) Insert(ctx context.Context, db *gorm.DB, lot *domain.ParkingLot) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(lot).Error
}

func (r *lotRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ParkingLot, error) {
	if db == nil {
		db = r.db
	}
	var lot domain.ParkingLot
	if err := db.WithContext(ctx).First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepo) FindByManagerID(ctx context.Context, db *gorm.DB, managerID snowflake.ID) (*domain.ParkingLot, error) {
	if db == nil {
		db = r.db
	}
	var lot domain.ParkingLot
	if err := db.WithContext(ctx).Where("manager_id = ?", managerID).First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func occupancyColumns(vt domain.VehicleType) (current, capacity string) {
	if vt == domain.VehicleTypeBike {
		return "current_bike", "bike_capacity"
	}
	return "current_car", "car_capacity"
}

// Admit performs the check-and-increment as one conditional UPDATE so two
// concurrent check-ins cannot both pass a stale capacity read.
func (r *lotRepo) Admit(ctx context.Context, db *gorm.DB, id snowflake.ID, vt domain.VehicleType) (bool, error) {
	if db == nil {
		db = r.db
	}
	current, capacity := occupancyColumns(vt)
	res := db.WithContext(ctx).Model(&domain.ParkingLot{}).
		Where("id = ? AND "+current+" < "+capacity, id).
		UpdateColumn(current, gorm.Expr(current+" + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *lotRepo) Release(ctx context.Context, db *gorm.DB, id snowflake.ID, vt domain.VehicleType) (bool, error) {
	if db == nil {
		db = r.db
	}
	current, _ := occupancyColumns(vt)
	res := db.WithContext(ctx).Model(&domain.ParkingLot{}).
		Where("id = ? AND "+current+" > 0", id).
		UpdateColumn(current, gorm.Expr(current+" - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
