package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// statements creating the schema.  CREATE TABLE IF NOT EXISTS keeps
// startup idempotent; the unique index on tickets.barcode is the
// final backstop against the barcode collision race.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS facilities (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		total_spaces INT UNSIGNED NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS currencies (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		code       VARCHAR(20) NOT NULL,
		symbol     VARCHAR(8) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_currencies_code (code)
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		facility_id    BIGINT UNSIGNED NOT NULL,
		currency_id    BIGINT UNSIGNED NOT NULL,
		per_hour_cents INT UNSIGNED NOT NULL,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_prices_facility FOREIGN KEY (facility_id) REFERENCES facilities (id),
		CONSTRAINT fk_prices_currency FOREIGN KEY (currency_id) REFERENCES currencies (id)
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		barcode     CHAR(16) NOT NULL,
		facility_id BIGINT UNSIGNED NOT NULL,
		price_id    BIGINT UNSIGNED NOT NULL,
		issued_at   DATETIME NOT NULL,
		status      VARCHAR(16) NOT NULL DEFAULT 'active',
		returned_at DATETIME NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_tickets_barcode (barcode),
		KEY idx_tickets_facility_status (facility_id, status),
		CONSTRAINT fk_tickets_facility FOREIGN KEY (facility_id) REFERENCES facilities (id),
		CONSTRAINT fk_tickets_price FOREIGN KEY (price_id) REFERENCES prices (id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		ticket_id    BIGINT UNSIGNED NOT NULL,
		amount_cents INT UNSIGNED NOT NULL,
		method       VARCHAR(32) NOT NULL,
		paid_at      DATETIME NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_payments_ticket_paid_at (ticket_id, paid_at),
		CONSTRAINT fk_payments_ticket FOREIGN KEY (ticket_id) REFERENCES tickets (id)
	)`,
}

// Bootstrap creates the schema when missing and seeds the default
// single-lot configuration.  Both steps are idempotent so the server
// can run it unconditionally at startup.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return seed(ctx, db)
}

// seed ensures the default currency, facility and price exist: Euro,
// a "Main Parking Lot" with 54 spaces and a rate of 2.00 EUR per
// started hour.  Existing rows are left untouched.
func seed(ctx context.Context, db *sql.DB) error {
	var currencyID uint64
	err := db.QueryRowContext(ctx, `SELECT id FROM currencies WHERE code = ?`, "EUR").Scan(&currencyID)
	if errors.Is(err, sql.ErrNoRows) {
		res, insErr := db.ExecContext(ctx,
			`INSERT INTO currencies (name, code, symbol) VALUES (?, ?, ?)`,
			"Euro", "EUR", "€",
		)
		if insErr != nil {
			return fmt.Errorf("seed currency: %w", insErr)
		}
		id, insErr := res.LastInsertId()
		if insErr != nil {
			return fmt.Errorf("seed currency: %w", insErr)
		}
		currencyID = uint64(id)
	} else if err != nil {
		return fmt.Errorf("seed currency: %w", err)
	}

	var facilityID uint64
	err = db.QueryRowContext(ctx, `SELECT id FROM facilities ORDER BY id LIMIT 1`).Scan(&facilityID)
	if errors.Is(err, sql.ErrNoRows) {
		res, insErr := db.ExecContext(ctx,
			`INSERT INTO facilities (name, total_spaces) VALUES (?, ?)`,
			"Main Parking Lot", 54,
		)
		if insErr != nil {
			return fmt.Errorf("seed facility: %w", insErr)
		}
		id, insErr := res.LastInsertId()
		if insErr != nil {
			return fmt.Errorf("seed facility: %w", insErr)
		}
		facilityID = uint64(id)
	} else if err != nil {
		return fmt.Errorf("seed facility: %w", err)
	}

	var priceID uint64
	err = db.QueryRowContext(ctx, `SELECT id FROM prices WHERE facility_id = ? LIMIT 1`, facilityID).Scan(&priceID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, insErr := db.ExecContext(ctx,
			`INSERT INTO prices (facility_id, currency_id, per_hour_cents) VALUES (?, ?, ?)`,
			facilityID, currencyID, 200,
		); insErr != nil {
			return fmt.Errorf("seed price: %w", insErr)
		}
	} else if err != nil {
		return fmt.Errorf("seed price: %w", err)
	}
	return nil
}
