package handlers

import (
	"errors"
	"net/http"

	bookingRepo "handyhub/database/repository/booking"
	userRepo "handyhub/database/repository/user"
	"handyhub/services/booking"
	"handyhub/utils"

	"github.com/gin-gonic/gin"
)

// respondError translates service-layer errors into the API's status codes.
func respondError(c *gin.Context, err error) {
	var validationErr *booking.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
		return
	}

	var conflictErr *booking.ConflictError
	if errors.As(err, &conflictErr) {
		utils.JSONError(c, http.StatusConflict, "Slot conflict", conflictErr.Message)
		return
	}

	var transitionErr *booking.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid transition", transitionErr.Error())
		return
	}

	var stateErr *booking.InvalidStateError
	if errors.As(err, &stateErr) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid state", stateErr.Message)
		return
	}

	var authErr *booking.AuthorizationError
	if errors.As(err, &authErr) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", authErr.Message)
		return
	}

	var providerErr *booking.PaymentProviderError
	if errors.As(err, &providerErr) {
		utils.JSONError(c, http.StatusBadGateway, "Payment provider error", providerErr.Message)
		return
	}

	if errors.Is(err, bookingRepo.ErrNotFound) || errors.Is(err, userRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
		return
	}

	utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
}
