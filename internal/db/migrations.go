package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: lookups of open rentals per costume and per customer.
	`CREATE INDEX IF NOT EXISTS idx_rentals_costume_status ON rentals(costume_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_rentals_customer_status ON rentals(customer_id, status)`,
	// Migration 2: audit trail per entity.
	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity, entity_id, occurred_at)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
