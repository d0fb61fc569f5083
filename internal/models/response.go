package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	ID                string          `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	PackageID         string          `json:"package_id"`
	PhotoType         string          `json:"photo_type"`
	ImageCount        int             `json:"image_count"`
	TotalPrice        decimal.Decimal `json:"total_price" swaggertype:"string"`
	CreditsUsed       int             `json:"credits_used"`
	FinalPrice        decimal.Decimal `json:"final_price" swaggertype:"string"`
	Status            string          `json:"status"`
	PaymentFlowStatus string          `json:"payment_flow_status"`
	PaymentMethod     string          `json:"payment_method"`
	Email             string          `json:"email"`
	Company           string          `json:"company,omitempty"`
	ObjectReference   string          `json:"object_reference,omitempty"`
	SpecialRequests   string          `json:"special_requests,omitempty"`
	UploadState       string          `json:"upload_state"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func NewOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:                o.ID.String(),
		OrderNumber:       o.OrderNumber,
		PackageID:         o.PackageID.String(),
		PhotoType:         string(o.PhotoType),
		ImageCount:        o.ImageCount,
		TotalPrice:        o.TotalPrice.Round(2),
		CreditsUsed:       o.CreditsUsed,
		FinalPrice:        o.FinalPrice.Round(2),
		Status:            string(o.Status),
		PaymentFlowStatus: string(o.PaymentFlowStatus),
		PaymentMethod:     string(o.PaymentMethod),
		Email:             o.Email,
		Company:           o.Company,
		ObjectReference:   o.ObjectReference,
		SpecialRequests:   o.SpecialRequests,
		UploadState:       string(o.UploadState),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// QuoteResponse carries display-rounded amounts; gross includes VAT.
type QuoteResponse struct {
	ImageCount  int             `json:"image_count"`
	Gross       decimal.Decimal `json:"gross" swaggertype:"string"`
	Net         decimal.Decimal `json:"net" swaggertype:"string"`
	VAT         decimal.Decimal `json:"vat" swaggertype:"string"`
	CreditsUsed int             `json:"credits_used"`
	FinalPrice  decimal.Decimal `json:"final_price" swaggertype:"string"`
}

type CreateOrderResponse struct {
	Order OrderResponse `json:"order"`
	Quote QuoteResponse `json:"quote"`
}

type FileResponse struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	StoragePath  string    `json:"storage_path"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	BracketGroup string    `json:"bracket_group,omitempty"`
	IsWatermark  bool      `json:"is_watermark"`
	CreatedAt    time.Time `json:"created_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}

type PackageResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price" swaggertype:"string"`
}

type AddOnResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price" swaggertype:"string"`
	IsFree bool            `json:"is_free"`
}

type CreditsResponse struct {
	Balance int `json:"balance"`
}

type DeliverableResponse struct {
	FileName  string `json:"file_name"`
	SignedURL string `json:"signed_url"`
}

type DeliverablesResponse struct {
	OrderID string                `json:"order_id"`
	Files   []DeliverableResponse `json:"files"`
}

type InvoiceResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	SignedURL     string `json:"signed_url"`
}

type ReferralValidationResponse struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`
}

type ReferralRedeemResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	CreditsAwarded int    `json:"credits_awarded"`
}

type StatusResponse struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HelpAnalytics struct {
	TotalRequests    int               `json:"total_requests"`
	OpenRequests     int               `json:"open_requests"`
	ResolvedRequests int               `json:"resolved_requests"`
	ByCategory       map[string]int    `json:"by_category"`
	Daily            []HelpAnalyticDay `json:"daily"`
}

type HelpAnalyticDay struct {
	Day      string `json:"day"`
	Requests int    `json:"requests"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
