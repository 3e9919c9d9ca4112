package rental

import (
	"github.com/shopspring/decimal"

	"github.com/erazemk/izposoja/internal/errs"
)

// Policy holds the shop's rental rules.
type Policy struct {
	DailyLateFee       decimal.Decimal // per unit and day late
	MinDays            int
	MaxDays            int
	MaxQuantity        int
	MaxOpenPerCustomer int // pending and active rentals at once, 0 for no limit
}

// DefaultPolicy returns the shop's standard rules.
func DefaultPolicy() Policy {
	return Policy{
		DailyLateFee:       decimal.NewFromInt(5000),
		MinDays:            1,
		MaxDays:            30,
		MaxQuantity:        10,
		MaxOpenPerCustomer: 5,
	}
}

// Validate checks that the rules are consistent.
func (p Policy) Validate() error {
	switch {
	case p.DailyLateFee.IsNegative():
		return errs.Validation("daily late fee cannot be negative")
	case p.MinDays < 0:
		return errs.Validation("minimum rental days cannot be negative")
	case p.MaxDays < p.MinDays:
		return errs.Validation("maximum rental days (%d) is below the minimum (%d)", p.MaxDays, p.MinDays)
	case p.MaxQuantity < 1:
		return errs.Validation("maximum quantity must be at least 1")
	case p.MaxOpenPerCustomer < 0:
		return errs.Validation("open rental limit cannot be negative")
	}
	return nil
}
