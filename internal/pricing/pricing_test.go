package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovirt-backend/internal/models"
)

func testCatalog() ([]models.Package, []models.AddOn) {
	packages := []models.Package{
		{ID: uuid.New(), Name: "Basic", BasePrice: decimal.NewFromInt(7)},
		{ID: uuid.New(), Name: "Premium", BasePrice: decimal.NewFromInt(10)},
	}
	addOns := []models.AddOn{
		{ID: uuid.New(), Name: "express", Price: decimal.NewFromInt(3)},
		{ID: uuid.New(), Name: "Upscale", Price: decimal.NewFromInt(2)},
		{ID: uuid.New(), Name: "watermark", Price: decimal.NewFromInt(5), IsFree: true},
	}
	return packages, addOns
}

func draft(photoType models.PhotoType, pkg models.PackageName, extras models.Extras, names ...string) *models.OrderData {
	files := make([]models.UploadFile, len(names))
	for i, n := range names {
		files[i] = models.UploadFile{Name: n}
	}
	return &models.OrderData{PhotoType: photoType, Package: pkg, Extras: extras, Files: files}
}

func TestEffectiveImageCount_PlainModesCountFiles(t *testing.T) {
	names := []string{"a.jpg", "b.png", "whatever.heic"}
	assert.Equal(t, 3, EffectiveImageCount(names, models.PhotoTypePlainPhone))
	assert.Equal(t, 3, EffectiveImageCount(names, models.PhotoTypePlainCamera))
	assert.Equal(t, 3, EffectiveImageCount(names, ""))
	assert.Equal(t, 0, EffectiveImageCount(nil, models.PhotoTypeBracketing3))
}

func TestEffectiveImageCount_BracketingGroupsByPrefix(t *testing.T) {
	names := []string{"loungeA_1.jpg", "loungeA_2.jpg", "loungeA_3.jpg", "loungeB_1.jpg"}
	assert.Equal(t, 2, EffectiveImageCount(names, models.PhotoTypeBracketing3))
	assert.Equal(t, 2, EffectiveImageCount(names, models.PhotoTypeBracketing5))
}

func TestEffectiveImageCount_BracketingIgnoresUnmatched(t *testing.T) {
	names := []string{"kitchen_1.JPG", "kitchen_2.jpeg", "notes.txt", "IMG0001.jpg", "bath_01.PNG"}
	assert.Equal(t, 2, EffectiveImageCount(names, models.PhotoTypeBracketing3))

	calc := NewCalculator(BillUnmatched, DefaultVATRate)
	assert.Equal(t, 4, calc.EffectiveImageCount(names, models.PhotoTypeBracketing3))
}

func TestBracketGroups(t *testing.T) {
	groups, unmatched := BracketGroups([]string{"b_1.jpg", "a_room_1.jpg", "b_2.jpg", "plain.jpg"})
	require.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].Name)
	assert.Equal(t, []string{"b_1.jpg", "b_2.jpg"}, groups[0].Files)
	assert.Equal(t, "a_room", groups[1].Name)
	assert.Equal(t, []string{"plain.jpg"}, unmatched)
	assert.Equal(t, "a_room", GroupOf("a_room_7.png"))
	assert.Equal(t, "", GroupOf("a_room.png"))
}

func TestOrderTotal(t *testing.T) {
	packages, addOns := testCatalog()

	total := OrderTotal(draft(models.PhotoTypePlainCamera, models.PackagePremium, models.Extras{Upscale: true},
		"1.jpg", "2.jpg", "3.jpg", "4.jpg"), packages, addOns)
	assert.True(t, decimal.NewFromInt(48).Equal(total), "got %s", total)
}

func TestOrderTotal_FreeAddOnAddsNothing(t *testing.T) {
	packages, addOns := testCatalog()

	without := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{}, "1.jpg", "2.jpg"), packages, addOns)
	with := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{Watermark: true}, "1.jpg", "2.jpg"), packages, addOns)
	assert.True(t, without.Equal(with))
	assert.True(t, decimal.NewFromInt(14).Equal(with))
}

func TestOrderTotal_UnknownPackageIsZero(t *testing.T) {
	packages, addOns := testCatalog()

	total := OrderTotal(draft(models.PhotoTypePlainPhone, "Gold", models.Extras{Express: true}, "1.jpg"), packages, addOns)
	assert.True(t, total.IsZero())
	assert.True(t, OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{}, "1.jpg"), nil, nil).IsZero())
}

func TestOrderTotal_Monotonic(t *testing.T) {
	packages, addOns := testCatalog()
	names := []string{}
	prev := decimal.Zero
	for i := 0; i < 6; i++ {
		names = append(names, "img.jpg")
		total := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{Express: true}, names...), packages, addOns)
		assert.True(t, total.GreaterThanOrEqual(prev))
		prev = total
	}

	base := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{}, "a.jpg"), packages, addOns)
	one := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{Express: true}, "a.jpg"), packages, addOns)
	two := OrderTotal(draft(models.PhotoTypePlainPhone, models.PackageBasic, models.Extras{Express: true, Upscale: true}, "a.jpg"), packages, addOns)
	assert.True(t, one.GreaterThanOrEqual(base))
	assert.True(t, two.GreaterThanOrEqual(one))
}

func TestSplitVAT(t *testing.T) {
	calc := NewCalculator(ExcludeUnmatched, DefaultVATRate)
	net, vat := calc.SplitVAT(decimal.NewFromInt(119))
	assert.True(t, decimal.NewFromInt(100).Equal(net), "net %s", net)
	assert.True(t, decimal.NewFromInt(19).Equal(vat), "vat %s", vat)
}

func TestClampCredits(t *testing.T) {
	assert.Equal(t, 3, ClampCredits(10, 3, 5))
	assert.Equal(t, 0, ClampCredits(-2, 3, 5))
	assert.Equal(t, 2, ClampCredits(20, 2, 4))
	assert.Equal(t, 4, ClampCredits(20, 10, 4))
	assert.Equal(t, 0, ClampCredits(5, -1, 4))
}

func TestFinalPrice(t *testing.T) {
	assert.True(t, FinalPrice(decimal.NewFromInt(50), 60).IsZero())
	assert.True(t, decimal.NewFromInt(46).Equal(FinalPrice(decimal.NewFromInt(48), 2)))
}

func TestQuote(t *testing.T) {
	packages, addOns := testCatalog()
	calc := NewCalculator(ExcludeUnmatched, DefaultVATRate)
	d := draft(models.PhotoTypePlainCamera, models.PackagePremium, models.Extras{Upscale: true}, "1.jpg", "2.jpg", "3.jpg", "4.jpg")
	d.CreditsToUse = 20

	q := calc.Quote(d, packages, addOns, 2)
	assert.Equal(t, 4, q.ImageCount)
	assert.Equal(t, 2, q.CreditsUsed)
	assert.True(t, decimal.NewFromInt(46).Equal(q.FinalPrice))
	assert.Equal(t, "40.34", q.Response().Net.StringFixed(2))
	assert.Equal(t, "7.66", q.Response().VAT.StringFixed(2))
}
