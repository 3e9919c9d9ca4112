package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Costume is a costume design held in stock as interchangeable units.
type Costume struct {
	ID             int64           `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Origin         string          `json:"origin,omitempty" db:"origin"`
	Size           string          `json:"size" db:"size"`
	Description    string          `json:"description,omitempty" db:"description"`
	TotalStock     int             `json:"total_stock" db:"total_stock"`
	AvailableStock int             `json:"available_stock" db:"available_stock"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	Status         string          `json:"status" db:"status"`
	ImageMime      string          `json:"image_mime,omitempty" db:"image_mime"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Costume sizes.
const (
	SizeS       = "S"
	SizeM       = "M"
	SizeL       = "L"
	SizeXL      = "XL"
	SizeAllSize = "ALL_SIZE"
)

// SizeLabels maps sizes to display names.
var SizeLabels = map[string]string{
	SizeS:       "Small",
	SizeM:       "Medium",
	SizeL:       "Large",
	SizeXL:      "Extra Large",
	SizeAllSize: "All Size",
}

// Costume statuses.
const (
	CostumeStatusAvailable    = "available"
	CostumeStatusOutOfStock   = "out_of_stock"
	CostumeStatusMaintenance  = "maintenance"
	CostumeStatusDiscontinued = "discontinued"
)

// CostumeStatusLabels maps costume statuses to display names.
var CostumeStatusLabels = map[string]string{
	CostumeStatusAvailable:    "Available",
	CostumeStatusOutOfStock:   "Out of Stock",
	CostumeStatusMaintenance:  "Under Maintenance",
	CostumeStatusDiscontinued: "Discontinued",
}

// ValidSize reports whether s is a known size.
func ValidSize(s string) bool {
	_, ok := SizeLabels[s]
	return ok
}

// ValidCostumeStatus reports whether s is a known costume status.
func ValidCostumeStatus(s string) bool {
	_, ok := CostumeStatusLabels[s]
	return ok
}

// StockStatus returns the status a costume must carry for the given available
// count. Maintenance and Discontinued are kept regardless of the count.
func StockStatus(status string, available int) string {
	switch status {
	case CostumeStatusMaintenance, CostumeStatusDiscontinued:
		return status
	}
	if available == 0 {
		return CostumeStatusOutOfStock
	}
	return CostumeStatusAvailable
}

// CanReserve reports whether quantity units can be taken from the costume.
func (c *Costume) CanReserve(quantity int) bool {
	return c.Status == CostumeStatusAvailable && quantity > 0 && c.AvailableStock >= quantity
}

// Reserved returns the number of units currently out on rental.
func (c *Costume) Reserved() int {
	return c.TotalStock - c.AvailableStock
}
