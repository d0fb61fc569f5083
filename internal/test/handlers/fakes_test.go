package handlers_test

import (
	"context"
	"io"

	"github.com/google/uuid"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/pricing"
	"renovirt-backend/internal/services"
)

type fakeOrders struct {
	CreateOrderFunc func(ctx context.Context, userID uuid.UUID, data *models.OrderData) (*services.CreatedOrder, error)
	QuoteFunc       func(ctx context.Context, userID uuid.UUID, req *models.QuoteRequest) (pricing.Quote, error)
	ListOrdersFunc  func(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetOrderFunc    func(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListFilesFunc   func(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderImage, error)
	CatalogFunc     func(ctx context.Context) ([]models.Package, []models.AddOn, error)
	CreditsFunc     func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, userID uuid.UUID, data *models.OrderData) (*services.CreatedOrder, error) {
	return f.CreateOrderFunc(ctx, userID, data)
}

func (f *fakeOrders) Quote(ctx context.Context, userID uuid.UUID, req *models.QuoteRequest) (pricing.Quote, error) {
	return f.QuoteFunc(ctx, userID, req)
}

func (f *fakeOrders) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return f.ListOrdersFunc(ctx, userID)
}

func (f *fakeOrders) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return f.GetOrderFunc(ctx, userID, orderID)
}

func (f *fakeOrders) ListFiles(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderImage, error) {
	return f.ListFilesFunc(ctx, userID, orderID)
}

func (f *fakeOrders) Catalog(ctx context.Context) ([]models.Package, []models.AddOn, error) {
	return f.CatalogFunc(ctx)
}

func (f *fakeOrders) Credits(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.CreditsFunc(ctx, userID)
}

type fakeAdmin struct {
	ListOrdersFunc    func(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error)
	UpdateStatusFunc  func(ctx context.Context, adminID, orderID uuid.UUID, next models.OrderStatus, note string) (*models.Order, error)
	HelpAnalyticsFunc func(ctx context.Context, days int) (*models.HelpAnalytics, error)
}

func (f *fakeAdmin) ListOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error) {
	return f.ListOrdersFunc(ctx, status, limit, offset)
}

func (f *fakeAdmin) UpdateStatus(ctx context.Context, adminID, orderID uuid.UUID, next models.OrderStatus, note string) (*models.Order, error) {
	return f.UpdateStatusFunc(ctx, adminID, orderID, next, note)
}

func (f *fakeAdmin) HelpAnalytics(ctx context.Context, days int) (*models.HelpAnalytics, error) {
	return f.HelpAnalyticsFunc(ctx, days)
}

type fakeReferrals struct {
	ValidateFunc func(ctx context.Context, userID uuid.UUID, code string) (string, error)
	RedeemFunc   func(ctx context.Context, userID uuid.UUID, code string) (*models.ReferralRedeemResponse, error)
}

func (f *fakeReferrals) Validate(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	return f.ValidateFunc(ctx, userID, code)
}

func (f *fakeReferrals) Redeem(ctx context.Context, userID uuid.UUID, code string) (*models.ReferralRedeemResponse, error) {
	return f.RedeemFunc(ctx, userID, code)
}

type fakeDownloads struct {
	DeliverablePathsFunc func(ctx context.Context, userID, orderID uuid.UUID) ([]string, error)
	DeliverablesFunc     func(ctx context.Context, userID, orderID uuid.UUID) ([]models.DeliverableResponse, error)
	WriteBundleFunc      func(ctx context.Context, paths []string, w io.Writer) error
	InvoiceFunc          func(ctx context.Context, userID, orderID uuid.UUID) (*models.InvoiceResponse, error)
}

func (f *fakeDownloads) DeliverablePaths(ctx context.Context, userID, orderID uuid.UUID) ([]string, error) {
	return f.DeliverablePathsFunc(ctx, userID, orderID)
}

func (f *fakeDownloads) Deliverables(ctx context.Context, userID, orderID uuid.UUID) ([]models.DeliverableResponse, error) {
	return f.DeliverablesFunc(ctx, userID, orderID)
}

func (f *fakeDownloads) WriteBundle(ctx context.Context, paths []string, w io.Writer) error {
	return f.WriteBundleFunc(ctx, paths, w)
}

func (f *fakeDownloads) Invoice(ctx context.Context, userID, orderID uuid.UUID) (*models.InvoiceResponse, error) {
	return f.InvoiceFunc(ctx, userID, orderID)
}
