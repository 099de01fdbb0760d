package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/nlhtungg/parking-lot/internal/checkout/domain"
)

type checkInRequest struct {
	LotID        string `json:"lot_id" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
}

// CheckIn
// POST /employee/parking/entry
func (s *Server) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusUnprocessableEntity, "lot_id, license_plate and vehicle_type are required")
		return
	}

	lotID, err := snowflake.ParseString(req.LotID)
	if err != nil {
		respondFailure(c, http.StatusUnprocessableEntity, "invalid lot_id")
		return
	}

	input := checkoutdomain.CheckInRequest{
		LotID:        lotID,
		LicensePlate: req.LicensePlate,
		VehicleType:  req.VehicleType,
	}
	if employeeID, ok := employeeIDFromContext(c); ok {
		input.RecordedBy = &employeeID
	}

	ticket, err := s.checkoutSvc.CheckIn(c.Request.Context(), input)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	s.metrics.CheckIns.WithLabelValues(string(ticket.VehicleType)).Inc()
	respondData(c, http.StatusCreated, "vehicle checked in", ticket)
}

// InitiateCheckout
// GET /employee/parking/exit/:session_id?is_lost=true
func (s *Server) InitiateCheckout(c *gin.Context) {
	sessionID, err := snowflake.ParseString(c.Param("session_id"))
	if err != nil {
		respondFailure(c, http.StatusUnprocessableEntity, "invalid session_id")
		return
	}
	isLost, _ := strconv.ParseBool(c.DefaultQuery("is_lost", "false"))

	quote, err := s.checkoutSvc.InitiateCheckout(c.Request.Context(), sessionID, isLost)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, http.StatusOK, "checkout pending", quote)
}

type confirmCheckoutRequest struct {
	PaymentID     string `json:"payment_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	// Accepted for wire compatibility; the amount was frozen at initiation
	// and confirmation never reprices.
	IsLost *bool `json:"is_lost,omitempty"`
}

// ConfirmCheckout
// POST /employee/parking/exit/confirm
func (s *Server) ConfirmCheckout(c *gin.Context) {
	var req confirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusUnprocessableEntity, "payment_id and payment_method are required")
		return
	}

	paymentID, err := snowflake.ParseString(req.PaymentID)
	if err != nil {
		respondFailure(c, http.StatusUnprocessableEntity, "invalid payment_id")
		return
	}

	idemKey := idempotencyKeyFromHeader(c)
	if body, ok := s.idem.Lookup(c.Request.Context(), idemKey); ok {
		c.Data(http.StatusOK, "application/json", body)
		return
	}

	receipt, err := s.checkoutSvc.ConfirmCheckout(c.Request.Context(), paymentID, req.PaymentMethod)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	s.metrics.Checkouts.WithLabelValues(string(receipt.Payment.Method)).Inc()
	s.idem.Remember(c.Request.Context(), idemKey, envelope{
		Success: true,
		Message: "checkout confirmed",
		Data:    receipt,
	})
	respondData(c, http.StatusOK, "checkout confirmed", receipt)
}

// ActiveSessions
// GET /employee/parking-sessions
func (s *Server) ActiveSessions(c *gin.Context) {
	employeeID, ok := employeeIDFromContext(c)
	if !ok {
		s.AbortWithError(c, checkoutdomain.ErrNoManagedLot)
		return
	}

	sessions, err := s.checkoutSvc.ActiveSessions(c.Request.Context(), employeeID)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, http.StatusOK, "active sessions", sessions)
}
