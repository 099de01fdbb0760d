package service

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/subscription/domain"
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
		log:  p.Log.Named("subscription.service"),
		repo: p.Repo,
	}
}

func (s *Service) FindActive(ctx context.Context, plate string, onDate time.Time) (*domain.MonthlySub, error) {
	day := truncateToDay(onDate)
	return s.repo.FindActive(ctx, s.db, plate, day)
}

// Validity windows are stored at midnight UTC; comparing day-to-day keeps
// both ends of [start_date, end_date] inclusive.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
