package model

import "time"

// Customer is a person who rents costumes.
type Customer struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	Email        string     `json:"email,omitempty" db:"email"`
	Instagram    string     `json:"instagram,omitempty" db:"instagram"`
	Address      string     `json:"address,omitempty" db:"address"`
	Status       string     `json:"status" db:"status"`
	TotalRentals int        `json:"total_rentals" db:"total_rentals"`
	LastRentalAt *time.Time `json:"last_rental_at,omitempty" db:"last_rental_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Customer statuses.
const (
	CustomerStatusActive      = "active"
	CustomerStatusInactive    = "inactive"
	CustomerStatusBlacklisted = "blacklisted"
	CustomerStatusSuspended   = "suspended"
)

// CustomerStatusLabels maps customer statuses to display names.
var CustomerStatusLabels = map[string]string{
	CustomerStatusActive:      "Active",
	CustomerStatusInactive:    "Inactive",
	CustomerStatusBlacklisted: "Blacklisted",
	CustomerStatusSuspended:   "Suspended",
}

// ValidCustomerStatus reports whether s is a known customer status.
func ValidCustomerStatus(s string) bool {
	_, ok := CustomerStatusLabels[s]
	return ok
}

// CanRent reports whether the customer may start a new rental.
func (c *Customer) CanRent() bool {
	return c.Status == CustomerStatusActive
}

// DisplayName returns the name with the Instagram handle, if any.
func (c *Customer) DisplayName() string {
	if c.Instagram == "" {
		return c.Name
	}
	return c.Name + " (@" + c.Instagram + ")"
}

// Tier is a loyalty classification derived from the lifetime rental count.
type Tier string

// Tiers, lowest first.
const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)
