package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/lot/domain"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("lot.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.ParkingLot, error) {
	lot, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ParkingLot{}, err
	}
	if lot == nil {
		return domain.ParkingLot{}, domain.ErrLotNotFound
	}
	return *lot, nil
}

func (s *Service) GetByManager(ctx context.Context, managerID snowflake.ID) (domain.ParkingLot, error) {
	lot, err := s.repo.FindByManagerID(ctx, s.db, managerID)
	if err != nil {
		return domain.ParkingLot{}, err
	}
	if lot == nil {
		return domain.ParkingLot{}, domain.ErrLotNotFound
	}
	return *lot, nil
}

// AdmitVehicle takes one slot for the vehicle class. ErrLotFull when the
// conditional update matched no row with spare capacity.
func (s *Service) AdmitVehicle(ctx context.Context, tx *gorm.DB, lotID snowflake.ID, vt domain.VehicleType) error {
	ok, err := s.repo.Admit(ctx, tx, lotID, vt)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrLotFull
	}
	return nil
}

// ReleaseVehicle frees one slot. An underflow means occupancy bookkeeping got
// out of sync with sessions and is surfaced as an internal error, not a
// business rejection.
func (s *Service) ReleaseVehicle(ctx context.Context, tx *gorm.DB, lotID snowflake.ID, vt domain.VehicleType) error {
	ok, err := s.repo.Release(ctx, tx, lotID, vt)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Error("occupancy counter underflow",
			zap.Int64("lot_id", int64(lotID)),
			zap.String("vehicle_type", string(vt)))
		return domain.ErrOccupancyUnderflow
	}
	return nil
}
