package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Money columns hold decimal strings.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS costumes (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    origin          TEXT NOT NULL DEFAULT '',
    size            TEXT NOT NULL CHECK (size IN ('S', 'M', 'L', 'XL', 'ALL_SIZE')),
    description     TEXT NOT NULL DEFAULT '',
    total_stock     INTEGER NOT NULL CHECK (total_stock >= 0),
    available_stock INTEGER NOT NULL CHECK (available_stock >= 0 AND available_stock <= total_stock),
    unit_price      TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'available'
                    CHECK (status IN ('available', 'out_of_stock', 'maintenance', 'discontinued')),
    image           BLOB,
    image_mime      TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at      DATETIME
);

CREATE TABLE IF NOT EXISTS customers (
    id             INTEGER PRIMARY KEY,
    name           TEXT NOT NULL,
    phone          TEXT NOT NULL DEFAULT '',
    email          TEXT NOT NULL DEFAULT '',
    instagram      TEXT NOT NULL DEFAULT '',
    address        TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'active'
                   CHECK (status IN ('active', 'inactive', 'blacklisted', 'suspended')),
    total_rentals  INTEGER NOT NULL DEFAULT 0 CHECK (total_rentals >= 0),
    last_rental_at DATETIME,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE TABLE IF NOT EXISTS rentals (
    id               INTEGER PRIMARY KEY,
    customer_id      INTEGER NOT NULL REFERENCES customers(id),
    costume_id       INTEGER NOT NULL REFERENCES costumes(id),
    customer_name    TEXT NOT NULL,
    costume_name     TEXT NOT NULL,
    start_date       DATETIME NOT NULL,
    scheduled_return DATETIME NOT NULL,
    actual_return    DATETIME,
    quantity         INTEGER NOT NULL CHECK (quantity >= 1),
    base_cost        TEXT NOT NULL,
    shipping_cost    TEXT NOT NULL DEFAULT '0',
    late_fee         TEXT NOT NULL DEFAULT '0',
    total_cost       TEXT NOT NULL,
    discount_rate    TEXT NOT NULL DEFAULT '0',
    final_cost       TEXT NOT NULL,
    shipping_method  TEXT NOT NULL DEFAULT '',
    tracking_number  TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'pending'
                     CHECK (status IN ('pending', 'active', 'returned', 'cancelled')),
    notes            TEXT NOT NULL DEFAULT '',
    created_by       INTEGER REFERENCES users(id),
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS audit_log (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL,
    entity       TEXT NOT NULL,
    entity_id    INTEGER NOT NULL,
    before_state TEXT NOT NULL DEFAULT '',
    after_state  TEXT NOT NULL DEFAULT '',
    actor_id     INTEGER,
    actor_name   TEXT NOT NULL DEFAULT '',
    occurred_at  DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
