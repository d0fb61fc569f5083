package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"renovirt-backend/internal/models"
)

// ListPackages godoc
// @Summary     List packages
// @Tags        catalog
// @Produce     json
// @Success     200 {array} models.PackageResponse
// @Router      /packages [get]
func (h *OrdersHandler) ListPackages(c *gin.Context) {
	packages, _, err := h.orders.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.PackageResponse, 0, len(packages))
	for _, p := range packages {
		resp = append(resp, models.PackageResponse{ID: p.ID.String(), Name: p.Name, BasePrice: p.BasePrice})
	}
	c.JSON(http.StatusOK, resp)
}

// ListAddOns godoc
// @Summary     List add-ons
// @Tags        catalog
// @Produce     json
// @Success     200 {array} models.AddOnResponse
// @Router      /add-ons [get]
func (h *OrdersHandler) ListAddOns(c *gin.Context) {
	_, addOns, err := h.orders.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.AddOnResponse, 0, len(addOns))
	for _, a := range addOns {
		resp = append(resp, models.AddOnResponse{ID: a.ID.String(), Name: a.Name, Price: a.Price, IsFree: a.IsFree})
	}
	c.JSON(http.StatusOK, resp)
}

// GetCredits godoc
// @Summary     Credit balance
// @Tags        credits
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CreditsResponse
// @Router      /credits [get]
func (h *OrdersHandler) GetCredits(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.orders.Credits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CreditsResponse{Balance: balance})
}
