package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rental is a single rental transaction of one costume by one customer.
type Rental struct {
	ID              int64           `json:"id" db:"id"`
	CustomerID      int64           `json:"customer_id" db:"customer_id"`
	CostumeID       int64           `json:"costume_id" db:"costume_id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CostumeName     string          `json:"costume_name" db:"costume_name"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	ScheduledReturn time.Time       `json:"scheduled_return" db:"scheduled_return"`
	ActualReturn    *time.Time      `json:"actual_return,omitempty" db:"actual_return"`
	Quantity        int             `json:"quantity" db:"quantity"`
	BaseCost        decimal.Decimal `json:"base_cost" db:"base_cost"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	LateFee         decimal.Decimal `json:"late_fee" db:"late_fee"`
	TotalCost       decimal.Decimal `json:"total_cost" db:"total_cost"`
	DiscountRate    decimal.Decimal `json:"discount_rate" db:"discount_rate"`
	FinalCost       decimal.Decimal `json:"final_cost" db:"final_cost"`
	ShippingMethod  string          `json:"shipping_method,omitempty" db:"shipping_method"`
	TrackingNumber  string          `json:"tracking_number,omitempty" db:"tracking_number"`
	Status          string          `json:"status" db:"status"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedBy       *int64          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// Derived on read, never stored.
	Overdue bool `json:"overdue" db:"-"`
}

// Rental statuses. Overdue is not a stored status, see IsOverdue.
const (
	RentalStatusPending   = "pending"
	RentalStatusActive    = "active"
	RentalStatusReturned  = "returned"
	RentalStatusCancelled = "cancelled"
)

// RentalStatusLabels maps rental statuses to display names.
var RentalStatusLabels = map[string]string{
	RentalStatusPending:   "Pending",
	RentalStatusActive:    "Active",
	RentalStatusReturned:  "Returned",
	RentalStatusCancelled: "Cancelled",
}

// OpenRentalStatuses are the non-terminal statuses. A rental in one of them
// holds a stock reservation.
var OpenRentalStatuses = []string{RentalStatusPending, RentalStatusActive}

// IsTerminal reports whether no further transition is allowed from status.
func IsTerminal(status string) bool {
	return status == RentalStatusReturned || status == RentalStatusCancelled
}

// SetBaseCost sets the base rental cost and recomputes the total.
func (r *Rental) SetBaseCost(cost decimal.Decimal) {
	r.BaseCost = cost
	r.recomputeTotal()
}

// SetShipping sets the shipping method and cost and recomputes the total.
func (r *Rental) SetShipping(method string, cost decimal.Decimal) {
	r.ShippingMethod = method
	r.ShippingCost = cost
	r.recomputeTotal()
}

// SetLateFee sets the late fee and recomputes the total.
func (r *Rental) SetLateFee(fee decimal.Decimal) {
	r.LateFee = fee
	r.recomputeTotal()
}

func (r *Rental) recomputeTotal() {
	r.TotalCost = r.BaseCost.Add(r.ShippingCost).Add(r.LateFee)
}

// IsOverdue reports whether the rental is still active past its scheduled
// return date as of now.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalStatusActive && Day(now).After(Day(r.ScheduledReturn))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b. It is negative
// when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
