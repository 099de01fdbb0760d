// Package seed creates the default lot and fee schedule so a fresh install
// can take its first check-in without manual setup.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	feeconfigdomain "github.com/nlhtungg/parking-lot/internal/feeconfig/domain"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
)

const (
	defaultLotName      = "Central Lot"
	defaultCarCapacity  = 50
	defaultBikeCapacity = 150
)

// Default fee schedule, integral VND. Monthly rows carry a zero service fee;
// the penalty still applies when the ticket is lost.
var defaultFees = []feeconfigdomain.FeeConfig{
	{TicketType: sessiondomain.TicketTypeDaily, VehicleType: lotdomain.VehicleTypeCar, ServiceFee: 20000, PenaltyFee: 50000},
	{TicketType: sessiondomain.TicketTypeDaily, VehicleType: lotdomain.VehicleTypeBike, ServiceFee: 10000, PenaltyFee: 30000},
	{TicketType: sessiondomain.TicketTypeMonthly, VehicleType: lotdomain.VehicleTypeCar, ServiceFee: 0, PenaltyFee: 50000},
	{TicketType: sessiondomain.TicketTypeMonthly, VehicleType: lotdomain.VehicleTypeBike, ServiceFee: 0, PenaltyFee: 30000},
}

// EnsureDefaults is idempotent; it only fills in what is missing.
func EnsureDefaults(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lots int64
		if err := tx.Model(&lotdomain.ParkingLot{}).Count(&lots).Error; err != nil {
			return err
		}
		if lots == 0 {
			lot := lotdomain.ParkingLot{
				ID:           node.Generate(),
				Name:         defaultLotName,
				CarCapacity:  defaultCarCapacity,
				BikeCapacity: defaultBikeCapacity,
			}
			if err := tx.Create(&lot).Error; err != nil {
				return err
			}
		}

		for _, fee := range defaultFees {
			var count int64
			err := tx.Model(&feeconfigdomain.FeeConfig{}).
				Where("ticket_type = ? AND vehicle_type = ?", fee.TicketType, fee.VehicleType).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			fee.ID = node.Generate()
			if err := tx.Create(&fee).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
