package pricing_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/pricing"
)

type pricingTestContext struct {
	packages []models.Package
	addOns   []models.AddOn
	draft    *models.OrderData
	quote    pricing.Quote
}

func (c *pricingTestContext) reset() {
	c.packages = nil
	c.addOns = nil
	c.draft = nil
	c.quote = pricing.Quote{}
}

func (c *pricingTestContext) thePackageCosts(name string, price int) error {
	c.packages = append(c.packages, models.Package{ID: uuid.New(), Name: name, BasePrice: decimal.NewFromInt(int64(price))})
	return nil
}

func (c *pricingTestContext) theAddOnCosts(name string, price int) error {
	c.addOns = append(c.addOns, models.AddOn{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(int64(price))})
	return nil
}

func (c *pricingTestContext) theFreeAddOnCosts(name string, price int) error {
	c.addOns = append(c.addOns, models.AddOn{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(int64(price)), IsFree: true})
	return nil
}

func (c *pricingTestContext) aDraftWithFiles(photoType, pkg string, count int) error {
	names := make([]string, count)
	for i := range names {
		names[i] = "photo" + strconv.Itoa(i) + ".jpg"
	}
	return c.aDraftWithNamedFiles(photoType, pkg, strings.Join(names, ","))
}

func (c *pricingTestContext) aDraftWithNamedFiles(photoType, pkg, names string) error {
	c.draft = &models.OrderData{PhotoType: models.PhotoType(photoType), Package: models.PackageName(pkg)}
	for _, n := range strings.Split(names, ",") {
		c.draft.Files = append(c.draft.Files, models.UploadFile{Name: strings.TrimSpace(n)})
	}
	return nil
}

func (c *pricingTestContext) theExtraIsSelected(extra string) error {
	switch models.AddOnKey(extra) {
	case models.AddOnExpress:
		c.draft.Extras.Express = true
	case models.AddOnUpscale:
		c.draft.Extras.Upscale = true
	case models.AddOnWatermark:
		c.draft.Extras.Watermark = true
	default:
		return fmt.Errorf("unknown extra %q", extra)
	}
	return nil
}

func (c *pricingTestContext) theCustomerAsksToUseCredits(credits int) error {
	c.draft.CreditsToUse = credits
	return nil
}

func (c *pricingTestContext) theDraftIsPriced(available int) error {
	calc := pricing.NewCalculator(pricing.ExcludeUnmatched, pricing.DefaultVATRate)
	c.quote = calc.Quote(c.draft, c.packages, c.addOns, available)
	return nil
}

func (c *pricingTestContext) theImageCountIs(count int) error {
	if c.quote.ImageCount != count {
		return fmt.Errorf("expected image count %d, got %d", count, c.quote.ImageCount)
	}
	return nil
}

func (c *pricingTestContext) theGrossPriceIs(price int) error {
	if !c.quote.Gross.Equal(decimal.NewFromInt(int64(price))) {
		return fmt.Errorf("expected gross %d, got %s", price, c.quote.Gross)
	}
	return nil
}

func (c *pricingTestContext) creditsAreApplied(credits int) error {
	if c.quote.CreditsUsed != credits {
		return fmt.Errorf("expected %d credits, got %d", credits, c.quote.CreditsUsed)
	}
	return nil
}

func (c *pricingTestContext) theFinalPriceIs(price int) error {
	if !c.quote.FinalPrice.Equal(decimal.NewFromInt(int64(price))) {
		return fmt.Errorf("expected final price %d, got %s", price, c.quote.FinalPrice)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the package "([^"]*)" costs (\d+)$`, tc.thePackageCosts)
	ctx.Step(`^the add-on "([^"]*)" costs (\d+)$`, tc.theAddOnCosts)
	ctx.Step(`^the free add-on "([^"]*)" costs (\d+)$`, tc.theFreeAddOnCosts)
	ctx.Step(`^a "([^"]*)" draft for package "([^"]*)" with (\d+) files$`, tc.aDraftWithFiles)
	ctx.Step(`^a "([^"]*)" draft for package "([^"]*)" with files "([^"]*)"$`, tc.aDraftWithNamedFiles)
	ctx.Step(`^the extra "([^"]*)" is selected$`, tc.theExtraIsSelected)
	ctx.Step(`^the customer asks to use (\d+) credits$`, tc.theCustomerAsksToUseCredits)

	ctx.Step(`^the draft is priced with (\d+) available credits$`, tc.theDraftIsPriced)

	ctx.Step(`^the image count is (\d+)$`, tc.theImageCountIs)
	ctx.Step(`^the gross price is (\d+)$`, tc.theGrossPriceIs)
	ctx.Step(`^(\d+) credits are applied$`, tc.creditsAreApplied)
	ctx.Step(`^the final price is (\d+)$`, tc.theFinalPriceIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/pricing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
