package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FreeosDAO/cronacle-backend/service"
)

// mapErrorToStatus translates service sentinel errors to HTTP status codes
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, service.ErrItemNotOffered):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuthorizationFailed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrBidTooLow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInsufficientCredit),
		errors.Is(err, service.ErrBiddingNotOpen),
		errors.Is(err, service.ErrBiddingClosed),
		errors.Is(err, service.ErrOutsideBiddingWindow),
		errors.Is(err, service.ErrRolloverTooEarly),
		errors.Is(err, service.ErrNoWinningBid):
		return http.StatusConflict
	case errors.Is(err, service.ErrSystemNotOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals to callers
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}
