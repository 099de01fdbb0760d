// Package domain contains the parking lot model and occupancy contracts.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrLotNotFound        = errors.New("parking lot not found")
	ErrLotFull            = errors.New("parking lot is full for this vehicle type")
	ErrOccupancyUnderflow = errors.New("occupancy counter underflow")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
)

type VehicleType string

const (
	VehicleTypeCar  VehicleType = "car"
	VehicleTypeBike VehicleType = "bike"
)

// ParseVehicleType accepts the wire value case-insensitively and returns the
// closed enum used everywhere past the boundary.
func ParseVehicleType(s string) (VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car":
		return VehicleTypeCar, nil
	case "bike":
		return VehicleTypeBike, nil
	}
	return "", ErrInvalidVehicleType
}

// ParkingLot carries per-class capacity limits and live occupancy counters.
// Invariant: 0 <= CurrentCar <= CarCapacity and 0 <= CurrentBike <= BikeCapacity,
// enforced by conditional updates in the repository.
type ParkingLot struct {
	ID           snowflake.ID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string        `json:"name" gorm:"type:text;not null"`
	CarCapacity  int           `json:"car_capacity" gorm:"not null"`
	BikeCapacity int           `json:"bike_capacity" gorm:"not null"`
	CurrentCar   int           `json:"current_car" gorm:"not null;default:0"`
	CurrentBike  int           `json:"current_bike" gorm:"not null;default:0"`
	ManagerID    *snowflake.ID `json:"manager_id" gorm:"index"`
	CreatedAt    time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"not null"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

// HasSpace reports whether the lot can take one more vehicle of the class.
// This is the read-side check; the authoritative gate is the conditional
// update in Repository.Admit.
func (l ParkingLot) HasSpace(vt VehicleType) bool {
	switch vt {
	case VehicleTypeCar:
		return l.CurrentCar < l.CarCapacity
	case VehicleTypeBike:
		return l.CurrentBike < l.BikeCapacity
	}
	return false
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lot *ParkingLot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ParkingLot, error)
	FindByManagerID(ctx context.Context, db *gorm.DB, managerID snowflake.ID) (*ParkingLot, error)
	// Admit increments the occupancy counter for the class iff it is below
	// capacity; returns false when the lot is full.
	Admit(ctx context.Context, db *gorm.DB, id snowflake.ID, vt VehicleType) (bool, error)
	// Release decrements the occupancy counter iff it is above zero; returns
	// false on underflow.
	Release(ctx context.Context, db *gorm.DB, id snowflake.ID, vt VehicleType) (bool, error)
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (ParkingLot, error)
	GetByManager(ctx context.Context, managerID snowflake.ID) (ParkingLot, error)
	AdmitVehicle(ctx context.Context, tx *gorm.DB, lotID snowflake.ID, vt VehicleType) error
	ReleaseVehicle(ctx context.Context, tx *gorm.DB, lotID snowflake.ID, vt VehicleType) error
}
