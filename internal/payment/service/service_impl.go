package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/payment/domain"
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
		log:  p.Log.Named("payment.service"),
		repo: p.Repo,
	}
}

func (s *Service) CreatePending(ctx context.Context, tx *gorm.DB, payment *domain.Payment) error {
	payment.Method = domain.MethodPending
	payment.PaidAt = nil
	return s.repo.Insert(ctx, tx, payment)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return *payment, nil
}

func (s *Service) PendingBySession(ctx context.Context, sessionID snowflake.ID) (*domain.Payment, error) {
	return s.repo.FindPendingBySession(ctx, s.db, sessionID)
}

// Finalize is the double-confirmation guard: the conditional update matches
// only a PENDING row, so the second confirm of the same payment loses.
func (s *Service) Finalize(ctx context.Context, tx *gorm.DB, id snowflake.ID, method domain.Method, at time.Time) error {
	if method != domain.MethodCash && method != domain.MethodCard {
		return domain.ErrInvalidMethod
	}
	ok, err := s.repo.Finalize(ctx, tx, id, method, at)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrPaymentNotFound
	}
	return domain.ErrPaymentProcessed
}
