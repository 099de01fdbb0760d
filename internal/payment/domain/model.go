// Package domain contains the payment ledger model. A payment is created
// PENDING by checkout-initiation and transitions exactly once to CASH or
// CARD; once finalized it is immutable.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentProcessed = errors.New("payment already processed")
	ErrInvalidMethod    = errors.New("invalid payment method")
)

type Method string

const (
	MethodPending Method = "PENDING"
	MethodCash    Method = "CASH"
	MethodCard    Method = "CARD"
)

// ParseMethod accepts only the exact terminal values; PENDING is never a
// valid input from the wire.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCash:
		return MethodCash, nil
	case MethodCard:
		return MethodCard, nil
	}
	return "", ErrInvalidMethod
}

type Payment struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SessionID      snowflake.ID      `json:"session_id" gorm:"not null;index"`
	SubscriptionID *snowflake.ID     `json:"subscription_id"`
	TotalAmount    int64             `json:"total_amount" gorm:"not null"`
	Method         Method            `json:"method" gorm:"type:varchar(10);not null;default:'PENDING'"`
	PaidAt         *time.Time        `json:"paid_at"`
	Metadata       datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

func (p Payment) Pending() bool { return p.Method == MethodPending }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindPendingBySession(ctx context.Context, db *gorm.DB, sessionID snowflake.ID) (*Payment, error)
	// Finalize sets method and paid_at iff the payment is still PENDING;
	// returns false when it was already finalized.
	Finalize(ctx context.Context, db *gorm.DB, id snowflake.ID, method Method, at time.Time) (bool, error)
}

type Service interface {
	CreatePending(ctx context.Context, tx *gorm.DB, payment *Payment) error
	Get(ctx context.Context, id snowflake.ID) (Payment, error)
	PendingBySession(ctx context.Context, sessionID snowflake.ID) (*Payment, error)
	Finalize(ctx context.Context, tx *gorm.DB, id snowflake.ID, method Method, at time.Time) error
}
