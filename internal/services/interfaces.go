package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"renovirt-backend/internal/models"
)

type CatalogStore interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
	ListAddOns(ctx context.Context) ([]models.AddOn, error)
}

type CreditStore interface {
	AvailableCredits(ctx context.Context, userID uuid.UUID) (int, error)
}

type OrderStore interface {
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order, addOns []models.OrderAddOn) error
	CreateOrderImage(ctx context.Context, img *models.OrderImage) error
	MarkUploadComplete(ctx context.Context, orderID, userID uuid.UUID) error
	CompensateOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error)
	StaleUploads(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
	ListOrderImages(ctx context.Context, orderID uuid.UUID) ([]models.OrderImage, error)
	GetLatestInvoice(ctx context.Context, orderID uuid.UUID) (*models.OrderInvoice, error)
}

type ReferralStore interface {
	GetReferralCode(ctx context.Context, code string) (*models.ReferralCode, error)
}

type FileStore interface {
	UploadFile(bucket, objectPath string, data []byte, contentType string) error
	ListFiles(bucket, prefix string) ([]string, error)
	RemoveFiles(bucket string, paths []string) error
	DownloadFile(bucket, objectPath string) ([]byte, error)
	SignedURL(bucket, objectPath string, ttl time.Duration) (string, error)
}

type EventPublisher interface {
	PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error
	PublishAdminEvent(ctx context.Context, event string, payload map[string]any) error
}

type RPCCaller interface {
	Call(ctx context.Context, fn string, params any, out any) error
}
