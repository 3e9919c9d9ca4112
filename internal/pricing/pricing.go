// Package pricing computes rental costs: base cost, late fees, shipping
// tariffs and the loyalty discount applied at final billing.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/model"
)

// NoShipping is the method name for customers who pick up in person.
const NoShipping = "Tanpa Ekspedisi"

// Tariff maps a shipping method name to its flat cost.
type Tariff map[string]decimal.Decimal

// DefaultTariff is the shop's courier price list.
func DefaultTariff() Tariff {
	return Tariff{
		NoShipping: decimal.Zero,
		"JNE":      decimal.NewFromInt(15000),
		"JNT":      decimal.NewFromInt(12000),
		"SiCepat":  decimal.NewFromInt(13000),
		"Paxel":    decimal.NewFromInt(20000),
		"GoSend":   decimal.NewFromInt(25000),
		"Grab":     decimal.NewFromInt(22000),
	}
}

// Lookup returns the cost of a shipping method. The empty method means no
// shipping. Matching ignores case.
func (t Tariff) Lookup(method string) (decimal.Decimal, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return decimal.Zero, nil
	}
	if cost, ok := t[method]; ok {
		return cost, nil
	}
	for name, cost := range t {
		if strings.EqualFold(name, method) {
			return cost, nil
		}
	}
	return decimal.Zero, errs.Validation("unknown shipping method %q", method)
}

// Methods returns the method names in the tariff.
func (t Tariff) Methods() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}

// RentalDays returns the number of whole calendar days between start and
// scheduledReturn, never negative.
func RentalDays(start, scheduledReturn time.Time) int {
	return max(0, model.DaysBetween(start, scheduledReturn))
}

// BaseCost returns unitPrice × quantity × days.
func BaseCost(unitPrice decimal.Decimal, quantity, days int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(decimal.NewFromInt(int64(days)))
}

// DaysLate returns how many calendar days actual falls after scheduled, or 0.
func DaysLate(scheduled, actual time.Time) int {
	return max(0, model.DaysBetween(scheduled, actual))
}

// LateFee returns dailyRate × days late × quantity.
func LateFee(dailyRate decimal.Decimal, scheduled, actual time.Time, quantity int) decimal.Decimal {
	days := DaysLate(scheduled, actual)
	if days == 0 {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(days))).Mul(decimal.NewFromInt(int64(quantity)))
}

// Final applies the discount rate to total once, rounded to two decimals.
func Final(total, discountRate decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(1).Sub(discountRate)).Round(2)
}

// FinalForCustomer applies the discount of the tier earned with rentalCount.
func FinalForCustomer(total decimal.Decimal, rentalCount int) (decimal.Decimal, decimal.Decimal) {
	rate := DiscountRate(TierFor(rentalCount))
	return Final(total, rate), rate
}

var idr = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount in rupiah, e.g. "Rp 30.000".
func FormatIDR(amount decimal.Decimal) string {
	return formatIDR(idr, amount)
}

func formatIDR(p *message.Printer, amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	sign := ""
	if whole < 0 {
		sign = "-"
		whole = -whole
	}
	return fmt.Sprintf("%sRp %s", sign, p.Sprintf("%d", whole))
}
