// Package domain contains the fee schedule, keyed by ticket and vehicle
// type. Read-only from the session/payment core.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
)

var ErrFeeConfigMissing = errors.New("no fee configuration for ticket/vehicle type")

// FeeConfig holds the base hourly rate and the lost-ticket surcharge for one
// (ticket type, vehicle type) pair. Amounts are integral VND.
type FeeConfig struct {
	ID          snowflake.ID             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TicketType  sessiondomain.TicketType `json:"ticket_type" gorm:"type:varchar(10);not null;uniqueIndex:idx_fee_key"`
	VehicleType lotdomain.VehicleType    `json:"vehicle_type" gorm:"type:varchar(10);not null;uniqueIndex:idx_fee_key"`
	ServiceFee  int64                    `json:"service_fee" gorm:"not null"`
	PenaltyFee  int64                    `json:"penalty_fee" gorm:"not null;default:0"`
	CreatedAt   time.Time                `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time                `json:"updated_at" gorm:"not null"`
}

func (FeeConfig) TableName() string { return "fee_configs" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cfg *FeeConfig) error
	Find(ctx context.Context, db *gorm.DB, ticketType sessiondomain.TicketType, vehicleType lotdomain.VehicleType) (*FeeConfig, error)
}
