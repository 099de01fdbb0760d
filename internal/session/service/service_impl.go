package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/session/domain"
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
		log:  p.Log.Named("session.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, tx *gorm.DB, session *domain.ParkingSession) error {
	if err := domain.ValidatePlate(session.LicensePlate); err != nil {
		return err
	}
	return s.repo.Insert(ctx, tx, session)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.ParkingSession, error) {
	session, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ParkingSession{}, err
	}
	if session == nil {
		return domain.ParkingSession{}, domain.ErrSessionNotFound
	}
	return *session, nil
}

func (s *Service) ActiveByLot(ctx context.Context, lotID snowflake.ID) ([]domain.ParkingSession, error) {
	return s.repo.FindActiveByLot(ctx, s.db, lotID)
}

func (s *Service) HasActive(ctx context.Context, lotID snowflake.ID, plate string) (bool, error) {
	session, err := s.repo.FindActiveByLotAndPlate(ctx, s.db, lotID, plate)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

func (s *Service) Complete(ctx context.Context, tx *gorm.DB, id snowflake.ID, at time.Time) error {
	ok, err := s.repo.Complete(ctx, tx, id, at)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// Distinguish missing from already-completed for the caller.
	existing, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrSessionNotFound
	}
	return domain.ErrSessionCompleted
}
