package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"renovirt-backend/internal/models"
)

type ReferralService interface {
	Validate(ctx context.Context, userID uuid.UUID, code string) (string, error)
	Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.ReferralRedeemResponse, error)
}

type ReferralsHandler struct {
	referrals ReferralService
}

func NewReferralsHandler(referrals ReferralService) *ReferralsHandler {
	return &ReferralsHandler{referrals: referrals}
}

// Validate godoc
// @Summary     Check a referral code
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ReferralRequest true "Code"
// @Success     200 {object} models.ReferralValidationResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /referrals/validate [post]
func (h *ReferralsHandler) Validate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	code, err := h.referrals.Validate(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReferralValidationResponse{Code: code, Valid: true})
}

// Redeem godoc
// @Summary     Redeem a referral code
// @Tags        referrals
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ReferralRequest true "Code"
// @Success     200 {object} models.ReferralRedeemResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /referrals/redeem [post]
func (h *ReferralsHandler) Redeem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	resp, err := h.referrals.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
