// Package domain contains the parking session model and its lifecycle
// contracts. A session is active while CheckedOutAt is null and is completed
// exactly once by a confirmed checkout.
package domain

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
)

var (
	ErrSessionNotFound  = errors.New("parking session not found")
	ErrSessionCompleted = errors.New("parking session already completed")
	ErrDuplicateSession = errors.New("license plate already has an active session in this lot")
	ErrInvalidPlate     = errors.New("invalid license plate")
)

type TicketType string

const (
	TicketTypeDaily   TicketType = "daily"
	TicketTypeMonthly TicketType = "monthly"
)

var plateRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

func ValidatePlate(plate string) error {
	if !plateRe.MatchString(plate) {
		return ErrInvalidPlate
	}
	return nil
}

type ParkingSession struct {
	ID           snowflake.ID          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	LotID        snowflake.ID          `json:"lot_id" gorm:"not null;index"`
	LicensePlate string                `json:"license_plate" gorm:"type:text;not null;index"`
	VehicleType  lotdomain.VehicleType `json:"vehicle_type" gorm:"type:varchar(10);not null"`
	TicketType   TicketType            `json:"ticket_type" gorm:"type:varchar(10);not null"`
	TicketCode   string                `json:"ticket_code" gorm:"type:varchar(36);not null;uniqueIndex"`
	IsMonthly    bool                  `json:"is_monthly" gorm:"not null;default:false"`
	CheckedInAt  time.Time             `json:"checked_in_at" gorm:"not null"`
	CheckedOutAt *time.Time            `json:"checked_out_at"`
	RecordedBy   *snowflake.ID         `json:"recorded_by"`
	CreatedAt    time.Time             `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time             `json:"updated_at" gorm:"not null"`
}

func (ParkingSession) TableName() string { return "parking_sessions" }

func (s ParkingSession) Active() bool { return s.CheckedOutAt == nil }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *ParkingSession) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ParkingSession, error)
	FindActiveByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) ([]ParkingSession, error)
	FindActiveByLotAndPlate(ctx context.Context, db *gorm.DB, lotID snowflake.ID, plate string) (*ParkingSession, error)
	// Complete sets the check-out timestamp iff it is still null; returns
	// false when the session was already completed.
	Complete(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
}

type Service interface {
	Create(ctx context.Context, tx *gorm.DB, session *ParkingSession) error
	Get(ctx context.Context, id snowflake.ID) (ParkingSession, error)
	ActiveByLot(ctx context.Context, lotID snowflake.ID) ([]ParkingSession, error)
	HasActive(ctx context.Context, lotID snowflake.ID, plate string) (bool, error)
	Complete(ctx context.Context, tx *gorm.DB, id snowflake.ID, at time.Time) error
}
