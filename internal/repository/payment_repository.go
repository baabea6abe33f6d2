package repository

import (
	"context"
	"database/sql"

	"github.com/parkhaus/parking-ticket-service/internal/model"
)

// PaymentRepo provides data access to the payments table.  Payments
// form an append-only ledger: rows are inserted when a payment is
// applied and never updated or deleted afterwards.  Whether a ticket
// is currently paid is always derived from this history together
// with the grace window.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx appends a payment within the scope of an existing
// transaction.  The caller must hold the ticket row lock so the
// preceding paid check and this insert are atomic, and must commit or
// roll back the transaction.  On success the generated ID and
// creation timestamp are populated on the provided record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (ticket_id, amount_cents, method, paid_at) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		p.TicketID, p.AmountCents, p.Method,
		p.PaidAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT paid_at, created_at FROM payments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, p.ID).Scan(&p.PaidAt, &p.CreatedAt)
}

type rowsQuerier func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

// loadPayments reads the payment history for a ticket ordered by
// (paid_at, id) ascending, so the last row is the latest payment with
// ids breaking ties.  Shared between the locked and unlocked ticket
// loads.
func loadPayments(ctx context.Context, query rowsQuerier, ticketID uint64) ([]model.Payment, error) {
	const q = `SELECT id, ticket_id, amount_cents, method, paid_at, created_at
	           FROM payments WHERE ticket_id = ?
	           ORDER BY paid_at, id`
	rows, err := query(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.TicketID, &p.AmountCents, &p.Method, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
