package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"renovirt-backend/internal/models"
)

// GetFiles godoc
// @Summary     Get order files
// @Description Returns the images uploaded with an order, including bracket group and watermark flag
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.FilesResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/files [get]
func (h *OrdersHandler) GetFiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	images, err := h.orders.ListFiles(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	files := make([]models.FileResponse, 0, len(images))
	for _, img := range images {
		files = append(files, models.FileResponse{
			ID:           img.ID.String(),
			FileName:     img.FileName,
			StoragePath:  img.StoragePath,
			FileSize:     img.FileSize,
			MimeType:     img.MimeType,
			BracketGroup: img.BracketGroup,
			IsWatermark:  img.IsWatermark,
			CreatedAt:    img.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, models.FilesResponse{Files: files})
}
