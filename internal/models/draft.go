package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PhotoType is the capture mode chosen in the first wizard step.
type PhotoType string

const (
	PhotoTypePlainPhone  PhotoType = "plain-phone"
	PhotoTypePlainCamera PhotoType = "plain-camera"
	PhotoTypeBracketing3 PhotoType = "bracketing-3"
	PhotoTypeBracketing5 PhotoType = "bracketing-5"
)

func (p PhotoType) Valid() bool {
	switch p {
	case PhotoTypePlainPhone, PhotoTypePlainCamera, PhotoTypeBracketing3, PhotoTypeBracketing5:
		return true
	}
	return false
}

func (p PhotoType) IsBracketing() bool {
	return p == PhotoTypeBracketing3 || p == PhotoTypeBracketing5
}

// Exposures is the number of shots merged into one output image.
func (p PhotoType) Exposures() int {
	switch p {
	case PhotoTypeBracketing3:
		return 3
	case PhotoTypeBracketing5:
		return 5
	}
	return 1
}

type PackageName string

const (
	PackageBasic   PackageName = "Basic"
	PackagePremium PackageName = "Premium"
)

// AddOnKey names an extra that can be toggled in the order wizard. Add-on
// rows are matched against it by name, ignoring case.
type AddOnKey string

const (
	AddOnExpress   AddOnKey = "express"
	AddOnUpscale   AddOnKey = "upscale"
	AddOnWatermark AddOnKey = "watermark"
)

type Extras struct {
	Express   bool `json:"express"`
	Upscale   bool `json:"upscale"`
	Watermark bool `json:"watermark"`
}

func (e Extras) IsSelected(key AddOnKey) bool {
	switch key {
	case AddOnExpress:
		return e.Express
	case AddOnUpscale:
		return e.Upscale
	case AddOnWatermark:
		return e.Watermark
	}
	return false
}

// UploadFile is one image blob held by a draft until it is uploaded.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f UploadFile) Size() int64 {
	return int64(len(f.Data))
}

// OrderData is the draft assembled by the order wizard.
type OrderData struct {
	PhotoType       PhotoType
	Files           []UploadFile
	Package         PackageName
	Extras          Extras
	WatermarkFile   *UploadFile
	Email           string
	Company         string
	ObjectReference string
	SpecialRequests string
	AcceptedTerms   bool
	PaymentMethod   PaymentMethod
	CreditsToUse    int
}

func (d *OrderData) FileNames() []string {
	names := make([]string, len(d.Files))
	for i, f := range d.Files {
		names[i] = f.Name
	}
	return names
}

type Package struct {
	ID        uuid.UUID
	Name      string
	BasePrice decimal.Decimal
}

type AddOn struct {
	ID     uuid.UUID
	Name   string
	Price  decimal.Decimal
	IsFree bool
}

// Key reports which wizard extra the add-on belongs to.
func (a AddOn) Key() AddOnKey {
	return AddOnKey(strings.ToLower(strings.TrimSpace(a.Name)))
}

func FindPackage(packages []Package, name PackageName) (Package, bool) {
	for _, p := range packages {
		if p.Name == string(name) {
			return p, true
		}
	}
	return Package{}, false
}
