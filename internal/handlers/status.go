package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"renovirt-backend/internal/models"
)

type AdminService interface {
	ListOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, adminID, orderID uuid.UUID, next models.OrderStatus, note string) (*models.Order, error)
	HelpAnalytics(ctx context.Context, days int) (*models.HelpAnalytics, error)
}

type AdminHandler struct {
	admin AdminService
}

func NewAdminHandler(admin AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListOrders godoc
// @Summary     List all orders
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by status"
// @Param       limit  query int    false "Page size (max 200)"
// @Param       offset query int    false "Offset"
// @Success     200 {object} models.OrderListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	orders, err := h.admin.ListOrders(c.Request.Context(), models.OrderStatus(c.Query("status")), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.OrderListResponse{Orders: make([]models.OrderResponse, 0, len(orders))}
	for i := range orders {
		resp.Orders = append(resp.Orders, models.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary     Change order status
// @Description Moves an order along its lifecycle and records the change in the status history
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string                     true "Order ID (UUID)"
// @Param       request  body models.UpdateStatusRequest true "New status"
// @Success     200 {object} models.StatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /admin/orders/{order_id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	order, err := h.admin.UpdateStatus(c.Request.Context(), adminID, orderID, req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		OrderID:   order.ID.String(),
		Status:    string(order.Status),
		UpdatedAt: order.UpdatedAt,
	})
}

// HelpAnalytics godoc
// @Summary     Help request analytics
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       days query int false "Window in days (default 30)"
// @Success     200 {object} models.HelpAnalytics
// @Router      /admin/help/analytics [get]
func (h *AdminHandler) HelpAnalytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	analytics, err := h.admin.HelpAnalytics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
