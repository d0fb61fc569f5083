package pricing

import (
	"github.com/shopspring/decimal"

	"renovirt-backend/internal/models"
)

// DefaultVATRate is the German standard rate included in every gross price.
var DefaultVATRate = decimal.RequireFromString("0.19")

// Calculator prices drafts under one bracketing policy and VAT rate.
type Calculator struct {
	policy  BracketingPolicy
	vatRate decimal.Decimal
}

func NewCalculator(policy BracketingPolicy, vatRate decimal.Decimal) *Calculator {
	if !policy.Valid() {
		policy = ExcludeUnmatched
	}
	if vatRate.IsNegative() {
		vatRate = DefaultVATRate
	}
	return &Calculator{policy: policy, vatRate: vatRate}
}

func (c *Calculator) Policy() BracketingPolicy {
	return c.policy
}

func (c *Calculator) EffectiveImageCount(fileNames []string, photoType models.PhotoType) int {
	return effectiveImageCount(fileNames, photoType, c.policy)
}

// OrderTotal returns the gross price of a draft. An unknown package prices
// at zero. Nothing is rounded.
func (c *Calculator) OrderTotal(data *models.OrderData, packages []models.Package, addOns []models.AddOn) decimal.Decimal {
	return c.total(data.Package, data.Extras, c.EffectiveImageCount(data.FileNames(), data.PhotoType), packages, addOns)
}

func (c *Calculator) total(pkgName models.PackageName, extras models.Extras, count int, packages []models.Package, addOns []models.AddOn) decimal.Decimal {
	pkg, ok := models.FindPackage(packages, pkgName)
	if !ok {
		return decimal.Zero
	}

	units := decimal.NewFromInt(int64(count))
	total := pkg.BasePrice.Mul(units)
	for _, addOn := range SelectedAddOns(extras, addOns) {
		if addOn.IsFree {
			continue
		}
		total = total.Add(addOn.Price.Mul(units))
	}
	return total
}

// SelectedAddOns returns the add-ons whose extra is switched on, free ones
// included.
func SelectedAddOns(extras models.Extras, addOns []models.AddOn) []models.AddOn {
	var selected []models.AddOn
	for _, a := range addOns {
		if extras.IsSelected(a.Key()) {
			selected = append(selected, a)
		}
	}
	return selected
}

// OrderTotal prices a draft with the default policy and VAT rate.
func OrderTotal(data *models.OrderData, packages []models.Package, addOns []models.AddOn) decimal.Decimal {
	return NewCalculator(ExcludeUnmatched, DefaultVATRate).OrderTotal(data, packages, addOns)
}

// SplitVAT splits a gross amount into its net part and the VAT included.
func (c *Calculator) SplitVAT(gross decimal.Decimal) (net, vat decimal.Decimal) {
	net = gross.Div(decimal.NewFromInt(1).Add(c.vatRate))
	return net, gross.Sub(net)
}

// Quote is the price summary shown before submission.
type Quote struct {
	ImageCount  int
	Gross       decimal.Decimal
	Net         decimal.Decimal
	VAT         decimal.Decimal
	CreditsUsed int
	FinalPrice  decimal.Decimal
}

func (c *Calculator) Quote(data *models.OrderData, packages []models.Package, addOns []models.AddOn, availableCredits int) Quote {
	return c.QuoteNames(data.FileNames(), data.PhotoType, data.Package, data.Extras, data.CreditsToUse, packages, addOns, availableCredits)
}

// QuoteNames prices a draft known only by its file names.
func (c *Calculator) QuoteNames(fileNames []string, photoType models.PhotoType, pkg models.PackageName, extras models.Extras,
	creditsToUse int, packages []models.Package, addOns []models.AddOn, availableCredits int) Quote {
	count := c.EffectiveImageCount(fileNames, photoType)
	gross := c.total(pkg, extras, count, packages, addOns)
	net, vat := c.SplitVAT(gross)
	credits := ClampCredits(creditsToUse, availableCredits, count)

	return Quote{
		ImageCount:  count,
		Gross:       gross,
		Net:         net,
		VAT:         vat,
		CreditsUsed: credits,
		FinalPrice:  FinalPrice(gross, credits),
	}
}

func (q Quote) Response() models.QuoteResponse {
	return models.QuoteResponse{
		ImageCount:  q.ImageCount,
		Gross:       q.Gross.Round(2),
		Net:         q.Net.Round(2),
		VAT:         q.VAT.Round(2),
		CreditsUsed: q.CreditsUsed,
		FinalPrice:  q.FinalPrice.Round(2),
	}
}
