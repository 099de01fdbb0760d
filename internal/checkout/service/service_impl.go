package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nlhtungg/parking-lot/internal/checkout/domain"
	"github.com/nlhtungg/parking-lot/internal/clock"
	"github.com/nlhtungg/parking-lot/internal/fee"
	feeconfigdomain "github.com/nlhtungg/parking-lot/internal/feeconfig/domain"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	paymentdomain "github.com/nlhtungg/parking-lot/internal/payment/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
	subscriptiondomain "github.com/nlhtungg/parking-lot/internal/subscription/domain"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	lotSvc        lotdomain.Service
	sessionSvc    sessiondomain.Service
	subSvc        subscriptiondomain.Service
	feeConfigRepo feeconfigdomain.Repository
	paymentSvc    paymentdomain.Service
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	LotSvc        lotdomain.Service
	SessionSvc    sessiondomain.Service
	SubSvc        subscriptiondomain.Service
	FeeConfigRepo feeconfigdomain.Repository
	PaymentSvc    paymentdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("checkout.service"),
		genID: p.GenID,
		clock: p.Clock,

		lotSvc:        p.LotSvc,
		sessionSvc:    p.SessionSvc,
		subSvc:        p.SubSvc,
		feeConfigRepo: p.FeeConfigRepo,
		paymentSvc:    p.PaymentSvc,
	}
}

// CheckIn validates the request, gates on capacity and duplicate sessions,
// then creates the session and takes the slot inside one transaction.
func (s *Service) CheckIn(ctx context.Context, req domain.CheckInRequest) (domain.Ticket, error) {
	if err := sessiondomain.ValidatePlate(req.LicensePlate); err != nil {
		return domain.Ticket{}, err
	}
	vt, err := lotdomain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return domain.Ticket{}, err
	}

	lot, err := s.lotSvc.Get(ctx, req.LotID)
	if err != nil {
		return domain.Ticket{}, err
	}
	// Friendly pre-checks; both are re-verified atomically below.
	if !lot.HasSpace(vt) {
		return domain.Ticket{}, lotdomain.ErrLotFull
	}
	active, err := s.sessionSvc.HasActive(ctx, lot.ID, req.LicensePlate)
	if err != nil {
		return domain.Ticket{}, err
	}
	if active {
		return domain.Ticket{}, sessiondomain.ErrDuplicateSession
	}

	now := s.clock.Now(ctx)
	sub, err := s.subSvc.FindActive(ctx, req.LicensePlate, now)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("subscription lookup: %w", err)
	}

	session := &sessiondomain.ParkingSession{
		ID:           s.genID.Generate(),
		LotID:        lot.ID,
		LicensePlate: req.LicensePlate,
		VehicleType:  vt,
		TicketType:   sessiondomain.TicketTypeDaily,
		TicketCode:   uuid.NewString(),
		CheckedInAt:  now,
		RecordedBy:   req.RecordedBy,
	}
	if sub != nil {
		session.TicketType = sessiondomain.TicketTypeMonthly
		session.IsMonthly = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sessionSvc.Create(ctx, tx, session); err != nil {
			return err
		}
		return s.lotSvc.AdmitVehicle(ctx, tx, lot.ID, vt)
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.log.Info("vehicle checked in",
		zap.Int64("session_id", int64(session.ID)),
		zap.String("license_plate", session.LicensePlate),
		zap.String("vehicle_type", string(vt)),
		zap.Bool("is_monthly", session.IsMonthly))

	return domain.Ticket{
		SessionID:    session.ID,
		TicketCode:   session.TicketCode,
		LotID:        lot.ID,
		LicensePlate: session.LicensePlate,
		VehicleType:  vt,
		CheckedInAt:  session.CheckedInAt,
		IsMonthly:    session.IsMonthly,
	}, nil
}

// InitiateCheckout computes the amount due and opens a PENDING payment. It
// mutates neither the session nor the lot: the operator shows the quote
// before anything commits.
func (s *Service) InitiateCheckout(ctx context.Context, sessionID snowflake.ID, isLost bool) (domain.Quote, error) {
	session, err := s.sessionSvc.Get(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	if !session.Active() {
		return domain.Quote{}, sessiondomain.ErrSessionCompleted
	}

	// A session has at most one PENDING payment; a repeated initiate
	// returns the frozen quote, hours included, instead of opening a
	// second one.
	if pending, err := s.paymentSvc.PendingBySession(ctx, session.ID); err != nil {
		return domain.Quote{}, err
	} else if pending != nil {
		return domain.Quote{
			PaymentID:     pending.ID,
			Amount:        pending.TotalAmount,
			DurationHours: quotedHours(pending),
			Status:        paymentdomain.MethodPending,
			Session:       session,
		}, nil
	}

	now := s.clock.Now(ctx)
	hours := fee.BillableHours(session.CheckedInAt, now)

	cfg, err := s.feeConfigRepo.Find(ctx, nil, session.TicketType, session.VehicleType)
	if err != nil {
		return domain.Quote{}, err
	}

	var subID *snowflake.ID
	var penaltyFee int64
	if cfg != nil {
		penaltyFee = cfg.PenaltyFee
	}
	if session.IsMonthly {
		// Best-effort audit reference; absence never blocks the zero fee.
		if sub, err := s.subSvc.FindActive(ctx, session.LicensePlate, now); err == nil && sub != nil {
			subID = &sub.ID
		}
	} else if cfg == nil {
		return domain.Quote{}, feeconfigdomain.ErrFeeConfigMissing
	}

	var serviceFee int64
	if cfg != nil {
		serviceFee = cfg.ServiceFee
	}
	amount := fee.Amount(hours, serviceFee, session.IsMonthly, isLost, penaltyFee)

	payment := &paymentdomain.Payment{
		ID:             s.genID.Generate(),
		SessionID:      session.ID,
		SubscriptionID: subID,
		TotalAmount:    amount,
		Metadata: datatypes.JSONMap{
			"duration_hours": hours,
			"is_lost":        isLost,
		},
	}
	if err := s.paymentSvc.CreatePending(ctx, nil, payment); err != nil {
		return domain.Quote{}, err
	}

	s.log.Info("checkout initiated",
		zap.Int64("session_id", int64(session.ID)),
		zap.Int64("payment_id", int64(payment.ID)),
		zap.Int64("amount", amount),
		zap.Int64("duration_hours", hours),
		zap.Bool("is_lost", isLost))

	return domain.Quote{
		PaymentID:     payment.ID,
		Amount:        amount,
		DurationHours: hours,
		Status:        paymentdomain.MethodPending,
		Session:       session,
	}, nil
}

// quotedHours recovers the billed hours frozen into the pending payment's
// metadata. JSON numbers scan back as float64.
func quotedHours(p *paymentdomain.Payment) int64 {
	switch v := p.Metadata["duration_hours"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// ConfirmCheckout finalizes the payment, completes the session and frees the
// slot as one transaction; a failure in any step rolls back all three.
func (s *Service) ConfirmCheckout(ctx context.Context, paymentID snowflake.ID, method string) (domain.Receipt, error) {
	parsed, err := paymentdomain.ParseMethod(method)
	if err != nil {
		return domain.Receipt{}, err
	}

	payment, err := s.paymentSvc.Get(ctx, paymentID)
	if err != nil {
		return domain.Receipt{}, err
	}
	if !payment.Pending() {
		return domain.Receipt{}, paymentdomain.ErrPaymentProcessed
	}

	session, err := s.sessionSvc.Get(ctx, payment.SessionID)
	if err != nil {
		return domain.Receipt{}, err
	}

	now := s.clock.Now(ctx)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentSvc.Finalize(ctx, tx, payment.ID, parsed, now); err != nil {
			return err
		}
		if err := s.sessionSvc.Complete(ctx, tx, session.ID, now); err != nil {
			return err
		}
		return s.lotSvc.ReleaseVehicle(ctx, tx, session.LotID, session.VehicleType)
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	payment.Method = parsed
	payment.PaidAt = &now
	session.CheckedOutAt = &now

	s.log.Info("checkout confirmed",
		zap.Int64("payment_id", int64(payment.ID)),
		zap.Int64("session_id", int64(session.ID)),
		zap.String("method", string(parsed)),
		zap.Int64("amount", payment.TotalAmount))

	return domain.Receipt{Payment: payment, Session: session}, nil
}

func (s *Service) ActiveSessions(ctx context.Context, employeeID snowflake.ID) (domain.LotSessions, error) {
	lot, err := s.lotSvc.GetByManager(ctx, employeeID)
	if err != nil {
		if errors.Is(err, lotdomain.ErrLotNotFound) {
			return domain.LotSessions{}, domain.ErrNoManagedLot
		}
		return domain.LotSessions{}, err
	}
	sessions, err := s.sessionSvc.ActiveByLot(ctx, lot.ID)
	if err != nil {
		return domain.LotSessions{}, err
	}
	return domain.LotSessions{LotID: lot.ID, LotName: lot.Name, Sessions: sessions}, nil
}
