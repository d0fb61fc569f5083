package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/pricing"
	"renovirt-backend/internal/services"
)

// MaxImageSize caps a single uploaded image.
const MaxImageSize = 50 << 20

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, data *models.OrderData) (*services.CreatedOrder, error)
	Quote(ctx context.Context, userID uuid.UUID, req *models.QuoteRequest) (pricing.Quote, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListFiles(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderImage, error)
	Catalog(ctx context.Context) ([]models.Package, []models.AddOn, error)
	Credits(ctx context.Context, userID uuid.UUID) (int, error)
}

type OrdersHandler struct {
	orders OrderService
}

func NewOrdersHandler(orders OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// CreateOrder godoc
// @Summary     Submit an order
// @Description Creates an order from the wizard draft. The draft is sent as JSON in the "order" form field, images as "images" parts and the optional watermark as a "watermark" part.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       order     formData string true  "Order draft (JSON)"
// @Param       images    formData file   true  "Images"
// @Param       watermark formData file   false "Watermark"
// @Success     201 {object} models.CreateOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := binding.JSON.BindBody([]byte(c.PostForm("order")), &req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order", Message: err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid multipart form", Message: err.Error()})
		return
	}

	data := &models.OrderData{
		PhotoType:       req.PhotoType,
		Package:         req.Package,
		Extras:          req.Extras,
		Email:           req.Email,
		Company:         req.Company,
		ObjectReference: req.ObjectReference,
		SpecialRequests: req.SpecialRequests,
		AcceptedTerms:   req.AcceptedTerms,
		PaymentMethod:   req.PaymentMethod,
		CreditsToUse:    req.CreditsToUse,
	}

	for _, fh := range form.File["images"] {
		f, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid image", Message: err.Error()})
			return
		}
		data.Files = append(data.Files, f)
	}

	if parts := form.File["watermark"]; len(parts) > 0 {
		f, err := readUpload(parts[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid watermark", Message: err.Error()})
			return
		}
		data.WatermarkFile = &f
	}

	created, err := h.orders.CreateOrder(c.Request.Context(), userID, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateOrderResponse{
		Order: models.NewOrderResponse(created.Order),
		Quote: created.Quote.Response(),
	})
}

func readUpload(fh *multipart.FileHeader) (models.UploadFile, error) {
	if fh.Size > MaxImageSize {
		return models.UploadFile{}, fmt.Errorf("%s exceeds %d bytes", fh.Filename, MaxImageSize)
	}
	src, err := fh.Open()
	if err != nil {
		return models.UploadFile{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return models.UploadFile{}, err
	}
	if len(data) > MaxImageSize {
		return models.UploadFile{}, fmt.Errorf("%s exceeds %d bytes", fh.Filename, MaxImageSize)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return models.UploadFile{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

// Quote godoc
// @Summary     Price a draft
// @Description Returns image count, gross, net, VAT and the final price after credits. Works without a session; credits then count as zero.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.QuoteRequest true "Draft"
// @Success     200 {object} models.QuoteResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /orders/quote [post]
func (h *OrdersHandler) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	quote, err := h.orders.Quote(c.Request.Context(), optionalUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote.Response())
}

// ListOrders godoc
// @Summary     List orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
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

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}
