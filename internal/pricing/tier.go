package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/model"
)

// tierThresholds lists the lowest rental count of each tier, highest first.
var tierThresholds = []struct {
	min  int
	tier model.Tier
}{
	{50, model.TierPlatinum},
	{20, model.TierGold},
	{5, model.TierSilver},
	{0, model.TierBronze},
}

// discountRates maps each tier to its discount on the final bill.
var discountRates = map[model.Tier]decimal.Decimal{
	model.TierBronze:   decimal.Zero,
	model.TierSilver:   decimal.RequireFromString("0.05"),
	model.TierGold:     decimal.RequireFromString("0.10"),
	model.TierPlatinum: decimal.RequireFromString("0.15"),
}

// TierLabels maps tiers to display names.
var TierLabels = map[model.Tier]string{
	model.TierBronze:   "Bronze",
	model.TierSilver:   "Silver",
	model.TierGold:     "Gold",
	model.TierPlatinum: "Platinum",
}

// TierFor returns the loyalty tier for a lifetime rental count. Negative
// counts are treated as zero.
func TierFor(rentalCount int) model.Tier {
	for _, t := range tierThresholds {
		if rentalCount >= t.min {
			return t.tier
		}
	}
	return model.TierBronze
}

// DiscountRate returns the fraction taken off the final bill for a tier.
// Unknown tiers get no discount.
func DiscountRate(tier model.Tier) decimal.Decimal {
	if r, ok := discountRates[tier]; ok {
		return r
	}
	return decimal.Zero
}
