package model

import "time"

// AuditEvent records one state change of an entity.
type AuditEvent struct {
	ID         string    `json:"id" db:"id"`
	Kind       string    `json:"kind" db:"kind"`
	Entity     string    `json:"entity" db:"entity"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Before     string    `json:"before,omitempty" db:"before_state"`
	After      string    `json:"after,omitempty" db:"after_state"`
	ActorID    *int64    `json:"actor_id,omitempty" db:"actor_id"`
	ActorName  string    `json:"actor_name,omitempty" db:"actor_name"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}

// Audited entities.
const (
	EntityCostume  = "costume"
	EntityCustomer = "customer"
	EntityRental   = "rental"
)

// Audit event kinds.
const (
	AuditStockReserved    = "stock.reserved"
	AuditStockReleased    = "stock.released"
	AuditStockAdjusted    = "stock.adjusted"
	AuditRentalCreated    = "rental.created"
	AuditRentalConfirmed  = "rental.confirmed"
	AuditRentalCancelled  = "rental.cancelled"
	AuditRentalReturned   = "rental.returned"
	AuditRentalShipping   = "rental.shipping_updated"
	AuditCustomerPromoted = "customer.tier_changed"
	AuditCostumeDeleted   = "costume.deleted"
	AuditCustomerDeleted  = "customer.deleted"
)
