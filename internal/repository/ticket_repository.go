package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/parkhaus/parking-ticket-service/internal/model"
)

// ErrTicketNotFound is returned when no ticket matches the requested
// barcode.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo provides data access to the tickets table.  Tickets are
// looked up by barcode rather than id because the barcode is the only
// identifier clients ever see.  All timestamps are stored and
// compared in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying connection pool so handlers can begin
// transactions spanning multiple repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// BarcodeExists reports whether a ticket with the given barcode
// already exists.  Used by the barcode generator for its collision
// check; the unique index on tickets.barcode remains the final
// backstop.
func (r *TicketRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	const q = `SELECT 1 FROM tickets WHERE barcode = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, barcode).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GenerateBarcode produces a collision-checked 16 hex character
// barcode.  Returns ErrBarcodeExhausted after five colliding
// attempts, which is a safety net rather than an expected outcome.
func (r *TicketRepo) GenerateBarcode(ctx context.Context) (string, error) {
	return generateBarcode(ctx, r.BarcodeExists)
}

// IsDuplicateBarcode reports whether err is the unique-key violation
// on tickets.barcode.  Callers regenerate the barcode and retry the
// insert when the (already checked) collision race is lost anyway.
func IsDuplicateBarcode(err error) bool { return isDuplicateKey(err) }

// CreateTx inserts a new ticket within the scope of an existing
// transaction.  The caller must have populated Barcode, FacilityID,
// PriceID, IssuedAt and Status, and must commit or roll back the
// transaction.  On success the generated ID and timestamp columns are
// populated on the provided record.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (barcode, facility_id, price_id, issued_at, status) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		t.Barcode, t.FacilityID, t.PriceID,
		t.IssuedAt.UTC().Format("2006-01-02 15:04:05"), t.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT issued_at, created_at, updated_at FROM tickets WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.IssuedAt, &t.CreatedAt, &t.UpdatedAt)
}

// GetByBarcode returns a ticket with its snapshotted price, currency
// and full payment history.  This unlocked read serves display
// endpoints; it may observe slightly stale state, which is acceptable
// because it does not mutate.  Returns ErrTicketNotFound when the
// barcode is unknown.
func (r *TicketRepo) GetByBarcode(ctx context.Context, barcode string) (*model.Ticket, error) {
	const q = `SELECT t.id, t.barcode, t.facility_id, t.price_id, t.issued_at, t.status, t.returned_at,
	                  t.created_at, t.updated_at,
	                  p.id, p.facility_id, p.currency_id, p.per_hour_cents, p.created_at,
	                  c.id, c.name, c.code, c.symbol
	           FROM tickets t
	           JOIN prices p ON p.id = t.price_id
	           JOIN currencies c ON c.id = p.currency_id
	           WHERE t.barcode = ?`
	var t model.Ticket
	var p model.Price
	var c model.Currency
	var returnedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, barcode).Scan(
		&t.ID, &t.Barcode, &t.FacilityID, &t.PriceID, &t.IssuedAt, &t.Status, &returnedAt,
		&t.CreatedAt, &t.UpdatedAt,
		&p.ID, &p.FacilityID, &p.CurrencyID, &p.PerHourCents, &p.CreatedAt,
		&c.ID, &c.Name, &c.Code, &c.Symbol,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		at := returnedAt.Time
		t.ReturnedAt = &at
	}
	p.Currency = &c
	t.Price = &p
	payments, err := loadPayments(ctx, r.db.QueryContext, t.ID)
	if err != nil {
		return nil, err
	}
	t.Payments = payments
	return &t, nil
}

// GetByBarcodeForUpdateTx loads a ticket while holding an exclusive
// row lock inside the provided transaction.  The lock serializes
// concurrent payment attempts and status changes on the same ticket:
// the paid check and the follow-up write happen atomically while it
// is held.  The price, currency and payment history are loaded in
// follow-up queries because MySQL disallows FOR UPDATE together with
// JOIN on some configurations.  The caller must commit or roll back
// the transaction to release the lock.
func (r *TicketRepo) GetByBarcodeForUpdateTx(ctx context.Context, tx *sql.Tx, barcode string) (*model.Ticket, error) {
	const q = `SELECT id, barcode, facility_id, price_id, issued_at, status, returned_at, created_at, updated_at
	           FROM tickets WHERE barcode = ? FOR UPDATE`
	var t model.Ticket
	var returnedAt sql.NullTime
	err := tx.QueryRowContext(ctx, q, barcode).Scan(
		&t.ID, &t.Barcode, &t.FacilityID, &t.PriceID, &t.IssuedAt, &t.Status, &returnedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		at := returnedAt.Time
		t.ReturnedAt = &at
	}
	const priceQ = `SELECT p.id, p.facility_id, p.currency_id, p.per_hour_cents, p.created_at,
	                       c.id, c.name, c.code, c.symbol
	                FROM prices p
	                JOIN currencies c ON c.id = p.currency_id
	                WHERE p.id = ?`
	var p model.Price
	var c model.Currency
	if err := tx.QueryRowContext(ctx, priceQ, t.PriceID).Scan(
		&p.ID, &p.FacilityID, &p.CurrencyID, &p.PerHourCents, &p.CreatedAt,
		&c.ID, &c.Name, &c.Code, &c.Symbol,
	); err != nil {
		return nil, err
	}
	p.Currency = &c
	t.Price = &p
	payments, err := loadPayments(ctx, tx.QueryContext, t.ID)
	if err != nil {
		return nil, err
	}
	t.Payments = payments
	return &t, nil
}

// MarkReturnedTx transitions a ticket to returned and stamps
// returned_at, within the provided transaction.  The caller is
// responsible for the state checks (paid, not already returned)
// under the ticket row lock; this method only performs the write.
func (r *TicketRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, ticketID uint64, at time.Time) error {
	const q = `UPDATE tickets SET status = ?, returned_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.StatusReturned, at.UTC().Format("2006-01-02 15:04:05"), ticketID)
	return err
}
