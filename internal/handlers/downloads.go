package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"renovirt-backend/internal/models"
)

type DownloadService interface {
	DeliverablePaths(ctx context.Context, userID, orderID uuid.UUID) ([]string, error)
	Deliverables(ctx context.Context, userID, orderID uuid.UUID) ([]models.DeliverableResponse, error)
	WriteBundle(ctx context.Context, paths []string, w io.Writer) error
	Invoice(ctx context.Context, userID, orderID uuid.UUID) (*models.InvoiceResponse, error)
}

type DownloadsHandler struct {
	downloads DownloadService
}

func NewDownloadsHandler(downloads DownloadService) *DownloadsHandler {
	return &DownloadsHandler{downloads: downloads}
}

// Deliverables godoc
// @Summary     List finished files
// @Description Returns short-lived signed URLs for the processed images of an order
// @Tags        downloads
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.DeliverablesResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/deliverables [get]
func (h *DownloadsHandler) Deliverables(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	files, err := h.downloads.Deliverables(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeliverablesResponse{OrderID: orderID.String(), Files: files})
}

// Bundle godoc
// @Summary     Download all finished files
// @Tags        downloads
// @Produce     application/zip
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/deliverables/zip [get]
func (h *DownloadsHandler) Bundle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	paths, err := h.downloads.DeliverablePaths(c.Request.Context(), userID, orderID)
	if err == nil && len(paths) == 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no deliverables"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, orderID))
	c.Status(http.StatusOK)

	// Headers are gone at this point; a failure can only truncate the archive.
	if err := h.downloads.WriteBundle(c.Request.Context(), paths, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// Invoice godoc
// @Summary     Latest invoice
// @Tags        downloads
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.InvoiceResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/invoice [get]
func (h *DownloadsHandler) Invoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	invoice, err := h.downloads.Invoice(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
