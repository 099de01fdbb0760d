// Package domain contains the monthly pass model. Rows are administered
// elsewhere; this core only asks whether a plate holds a valid pass.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
)

var ErrSubscriptionNotFound = errors.New("monthly subscription not found")

// MonthlySub is a flat-fee pass valid on every day in [StartDate, EndDate],
// both ends inclusive, at day granularity.
type MonthlySub struct {
	ID           snowflake.ID          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	LicensePlate string                `json:"license_plate" gorm:"type:text;not null;index"`
	VehicleType  lotdomain.VehicleType `json:"vehicle_type" gorm:"type:varchar(10);not null"`
	StartDate    time.Time             `json:"start_date" gorm:"not null"`
	EndDate      time.Time             `json:"end_date" gorm:"not null"`
	OwnerName    string                `json:"owner_name" gorm:"type:text"`
	OwnerPhone   string                `json:"owner_phone" gorm:"type:text"`
	CreatedAt    time.Time             `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time             `json:"updated_at" gorm:"not null"`
}

func (MonthlySub) TableName() string { return "monthly_subs" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *MonthlySub) error
	// FindActive returns the subscription whose validity window contains
	// onDate, or nil. Ordered by end_date descending so the query is
	// deterministic if overlapping rows slip in.
	FindActive(ctx context.Context, db *gorm.DB, plate string, onDate time.Time) (*MonthlySub, error)
}

type Service interface {
	// FindActive normalizes onDate to day granularity before querying.
	FindActive(ctx context.Context, plate string, onDate time.Time) (*MonthlySub, error)
}
