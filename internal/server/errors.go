package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	checkoutdomain "github.com/nlhtungg/parking-lot/internal/checkout/domain"
	lotdomain "github.com/nlhtungg/parking-lot/internal/lot/domain"
	paymentdomain "github.com/nlhtungg/parking-lot/internal/payment/domain"
	sessiondomain "github.com/nlhtungg/parking-lot/internal/session/domain"
	subscriptiondomain "github.com/nlhtungg/parking-lot/internal/subscription/domain"
)

// statusFromError maps domain sentinels onto the error taxonomy:
// validation -> 422, not found -> 404, state conflict -> 400, rest -> 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, sessiondomain.ErrInvalidPlate),
		errors.Is(err, lotdomain.ErrInvalidVehicleType),
		errors.Is(err, paymentdomain.ErrInvalidMethod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lotdomain.ErrLotNotFound),
		errors.Is(err, sessiondomain.ErrSessionNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, checkoutdomain.ErrNoManagedLot):
		return http.StatusNotFound
	case errors.Is(err, lotdomain.ErrLotFull),
		errors.Is(err, sessiondomain.ErrDuplicateSession),
		errors.Is(err, sessiondomain.ErrSessionCompleted),
		errors.Is(err, paymentdomain.ErrPaymentProcessed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// AbortWithError writes the envelope for a failed request. Internal errors
// are logged with detail and surfaced with a generic message only.
func (s *Server) AbortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		respondFailure(c, status, "internal server error")
		return
	}
	respondFailure(c, status, err.Error())
}
