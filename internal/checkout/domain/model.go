// Package domain defines the checkout orchestrator contracts. The state
// machine per session/payment pair is ACTIVE -> CHECKOUT_PENDING ->
// COMPLETED; no transition skips a state and none run backwards.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	paymentdomain "github.com/nlhtungg/parking-lot/internal/payment/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
)

var ErrNoManagedLot = errors.New("employee manages no parking lot")

type CheckInRequest struct {
	LotID        snowflake.ID
	LicensePlate string
	VehicleType  string
	RecordedBy   *snowflake.ID
}

// Ticket is the check-in receipt handed to the operator/customer.
type Ticket struct {
	SessionID    snowflake.ID          `json:"session_id"`
	TicketCode   string                `json:"ticket_code"`
	LotID        snowflake.ID          `json:"lot_id"`
	LicensePlate string                `json:"license_plate"`
	VehicleType  lotdomain.VehicleType `json:"vehicle_type"`
	CheckedInAt  time.Time             `json:"checked_in_at"`
	IsMonthly    bool                  `json:"is_monthly"`
}

// Quote is the dry-run output of checkout-initiation: the amount is computed
// and frozen in a PENDING payment, but session and capacity are untouched.
type Quote struct {
	PaymentID     snowflake.ID                 `json:"payment_id"`
	Amount        int64                        `json:"amount"`
	DurationHours int64                        `json:"duration_hours"`
	Status        paymentdomain.Method         `json:"status"`
	Session       sessiondomain.ParkingSession `json:"session_details"`
}

type Receipt struct {
	Payment paymentdomain.Payment        `json:"payment"`
	Session sessiondomain.ParkingSession `json:"session"`
}

type LotSessions struct {
	LotID    snowflake.ID                   `json:"lot_id"`
	LotName  string                         `json:"lot_name"`
	Sessions []sessiondomain.ParkingSession `json:"sessions"`
}

type Service interface {
	CheckIn(ctx context.Context, req CheckInRequest) (Ticket, error)
	// InitiateCheckout quotes the amount due and opens a PENDING payment.
	// The lost-ticket flag is authoritative here: the amount is frozen and
	// confirmation never reprices.
	InitiateCheckout(ctx context.Context, sessionID snowflake.ID, isLost bool) (Quote, error)
	ConfirmCheckout(ctx context.Context, paymentID snowflake.ID, method string) (Receipt, error)
	ActiveSessions(ctx context.Context, employeeID snowflake.ID) (LotSessions, error)
}
