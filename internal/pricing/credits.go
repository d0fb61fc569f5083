package pricing

import "github.com/shopspring/decimal"

// ClampCredits limits a credit request to what the customer holds and to one
// credit per billed image.
func ClampCredits(requested, available, imageCount int) int {
	limit := min(available, imageCount)
	if limit < 0 {
		limit = 0
	}
	return max(0, min(requested, limit))
}

// FinalPrice subtracts credits (one currency unit each) from the gross
// price, never going below zero.
func FinalPrice(gross decimal.Decimal, credits int) decimal.Decimal {
	final := gross.Sub(decimal.NewFromInt(int64(credits)))
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
