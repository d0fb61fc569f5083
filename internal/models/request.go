package models

// CreateOrderRequest is the JSON document sent in the "order" field of the
// multipart order submission. Images travel as "images" parts, the optional
// watermark as a "watermark" part.
type CreateOrderRequest struct {
	PhotoType       PhotoType     `json:"photo_type" binding:"required"`
	Package         PackageName   `json:"package" binding:"required"`
	Extras          Extras        `json:"extras"`
	Email           string        `json:"email" binding:"required"`
	Company         string        `json:"company"`
	ObjectReference string        `json:"object_reference"`
	SpecialRequests string        `json:"special_requests"`
	AcceptedTerms   bool          `json:"accepted_terms"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	CreditsToUse    int           `json:"credits_to_use"`
}

// QuoteRequest prices a draft before any file is uploaded.
type QuoteRequest struct {
	PhotoType    PhotoType   `json:"photo_type" binding:"required"`
	FileNames    []string    `json:"file_names"`
	Package      PackageName `json:"package" binding:"required"`
	Extras       Extras      `json:"extras"`
	CreditsToUse int         `json:"credits_to_use"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Note   string      `json:"note"`
}

type ReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
