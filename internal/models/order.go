package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {OrderStatusInProgress},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move an order from s to next.
// Cancelled is terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentFlowStatus string

const (
	PaymentFlowDraft     PaymentFlowStatus = "draft"
	PaymentFlowPending   PaymentFlowStatus = "payment_pending"
	PaymentFlowCompleted PaymentFlowStatus = "payment_completed"
	PaymentFlowAbandoned PaymentFlowStatus = "abandoned"
)

type PaymentMethod string

const (
	PaymentMethodInvoice PaymentMethod = "invoice"
	PaymentMethodStripe  PaymentMethod = "stripe"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodInvoice || m == PaymentMethodStripe
}

// InitialPaymentFlow is the payment_flow_status an order starts with.
// Invoice orders are billed later and count as paid immediately, stripe
// orders wait for the external confirmation.
func (m PaymentMethod) InitialPaymentFlow() PaymentFlowStatus {
	if m == PaymentMethodStripe {
		return PaymentFlowDraft
	}
	return PaymentFlowCompleted
}

type UploadState string

const (
	UploadStateUploading UploadState = "uploading"
	UploadStateComplete  UploadState = "complete"
)

type Order struct {
	ID                uuid.UUID
	OrderNumber       string
	UserID            uuid.UUID
	PackageID         uuid.UUID
	PhotoType         PhotoType
	ImageCount        int
	TotalPrice        decimal.Decimal
	CreditsUsed       int
	FinalPrice        decimal.Decimal
	Status            OrderStatus
	PaymentFlowStatus PaymentFlowStatus
	PaymentMethod     PaymentMethod
	TermsAccepted     bool
	Email             string
	Company           string
	ObjectReference   string
	SpecialRequests   string
	UploadState       UploadState
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderImage struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	UserID       uuid.UUID
	FileName     string
	StoragePath  string
	FileSize     int64
	MimeType     string
	BracketGroup string
	IsWatermark  bool
	CreatedAt    time.Time
}

type OrderAddOn struct {
	OrderID uuid.UUID
	AddOnID uuid.UUID
	Price   decimal.Decimal
}

type StatusHistoryEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	ChangedBy uuid.UUID
	Note      string
	CreatedAt time.Time
}

type OrderInvoice struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	InvoiceNumber string
	StoragePath   string
	CreatedAt     time.Time
}
