package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"renovirt-backend/internal/middleware"
	"renovirt-backend/internal/models"
	"renovirt-backend/internal/ordernumber"
	"renovirt-backend/internal/services"
)

// currentUserID reads the authenticated user. On failure the response has
// already been written.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

// optionalUserID returns uuid.Nil for anonymous requests.
func optionalUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(middleware.UserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return uuid.Nil, false
	}
	return orderID, true
}

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrValidation, http.StatusBadRequest},
	{services.ErrUnauthenticated, http.StatusUnauthorized},
	{services.ErrOrderNotFound, http.StatusNotFound},
	{services.ErrInvoiceNotFound, http.StatusNotFound},
	{services.ErrNoDeliverables, http.StatusNotFound},
	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrInsufficientCredits, http.StatusConflict},
	{services.ErrReferralInvalid, http.StatusUnprocessableEntity},
	{services.ErrReferralOwnCode, http.StatusUnprocessableEntity},
	{services.ErrReferralExhausted, http.StatusUnprocessableEntity},
	{services.ErrReferralRejected, http.StatusUnprocessableEntity},
	{services.ErrUploadFailed, http.StatusBadGateway},
	{ordernumber.ErrOrderNumberExhausted, http.StatusServiceUnavailable},
}

// respondError maps service errors to status codes. Anything unknown is a
// 500 and is attached to the context for the access log.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, models.ErrorResponse{Error: e.err.Error(), Message: err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
}
