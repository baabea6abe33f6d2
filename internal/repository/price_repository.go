package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parkhaus/parking-ticket-service/internal/model"
)

// ErrNoPriceConfigured is returned when a facility has no price row,
// which means tickets cannot be issued against it.
var ErrNoPriceConfigured = errors.New("no price configured for parking lot")

// PriceRepo provides data access to the prices and currencies tables.
// A facility keeps a history of prices; the most recently created row
// is the rate offered to new tickets.  Existing tickets keep their
// snapshotted price row regardless of later changes.
type PriceRepo struct {
	db *sql.DB
}

// NewPriceRepo returns a new PriceRepo bound to the given database.
func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// LatestByFacility returns the current price for a facility together
// with its currency.  "Current" means the most recently created row.
// Returns ErrNoPriceConfigured when the facility has no prices.
func (r *PriceRepo) LatestByFacility(ctx context.Context, facilityID uint64) (*model.Price, error) {
	const q = `SELECT p.id, p.facility_id, p.currency_id, p.per_hour_cents, p.created_at,
	                  c.id, c.name, c.code, c.symbol
	           FROM prices p
	           JOIN currencies c ON c.id = p.currency_id
	           WHERE p.facility_id = ?
	           ORDER BY p.id DESC LIMIT 1`
	var p model.Price
	var c model.Currency
	err := r.db.QueryRowContext(ctx, q, facilityID).Scan(
		&p.ID, &p.FacilityID, &p.CurrencyID, &p.PerHourCents, &p.CreatedAt,
		&c.ID, &c.Name, &c.Code, &c.Symbol,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPriceConfigured
	}
	if err != nil {
		return nil, err
	}
	p.Currency = &c
	return &p, nil
}

// Create inserts a new price row for a facility.  Older rows are kept
// as history so that tickets snapshotting them stay valid.  On
// success the generated ID and creation timestamp are populated on
// the provided record.
func (r *PriceRepo) Create(ctx context.Context, p *model.Price) error {
	const q = `INSERT INTO prices (facility_id, currency_id, per_hour_cents) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.FacilityID, p.CurrencyID, p.PerHourCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at FROM prices WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}
