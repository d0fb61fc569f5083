package services

import (
	"errors"
	"fmt"
)

// ErrValidation marks every error caused by bad client input. Wrapped
// together with a specific sentinel so callers can test for either.
var ErrValidation = errors.New("validation failed")

var (
	ErrUnauthenticated      = errors.New("user not authenticated")
	ErrPackageNotFound      = errors.New("package not found")
	ErrTermsNotAccepted     = errors.New("terms and conditions must be accepted")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrNoFiles              = errors.New("at least one image is required")
	ErrDuplicateFile        = errors.New("duplicate file name")
	ErrInvalidPhotoType     = errors.New("invalid photo type")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrUnexpectedWatermark  = errors.New("watermark file requires the watermark extra")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidReferralCode  = errors.New("referral code must be 6 to 12 letters or digits")
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUploadFailed        = errors.New("order upload failed")
	ErrReferralInvalid     = errors.New("referral code not found or inactive")
	ErrReferralOwnCode     = errors.New("cannot use your own referral code")
	ErrReferralExhausted   = errors.New("referral code has reached its limit")
	ErrReferralRejected    = errors.New("referral rejected")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrNoDeliverables      = errors.New("no deliverables available")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
