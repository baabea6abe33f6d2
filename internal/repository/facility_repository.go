package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parkhaus/parking-ticket-service/internal/model"
)

// ErrFacilityNotFound is returned when no parking facility is
// configured in the database.
var ErrFacilityNotFound = errors.New("no parking facility available")

// FacilityRepo provides data access to the facilities table and to
// the derived occupancy counts.  Occupancy is never stored: the
// number of free spaces is always total_spaces minus the count of
// active tickets, so a returned ticket frees its space without any
// bookkeeping on the facility row.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo returns a new FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// DB exposes the underlying connection pool so handlers can begin
// transactions spanning multiple repositories.
func (r *FacilityRepo) DB() *sql.DB { return r.db }

// First returns the first facility by id.  The service currently runs
// single-lot: every request operates on this facility.  Returns
// ErrFacilityNotFound when none is configured.
func (r *FacilityRepo) First(ctx context.Context) (*model.Facility, error) {
	const q = `SELECT id, name, total_spaces, created_at, updated_at
	           FROM facilities ORDER BY id LIMIT 1`
	var f model.Facility
	err := r.db.QueryRowContext(ctx, q).Scan(&f.ID, &f.Name, &f.TotalSpaces, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FirstForUpdateTx is like First but acquires an exclusive row lock
// on the facility inside the provided transaction.  The lock
// serializes concurrent admissions: the capacity check and the ticket
// insert happen atomically while it is held, so two requests can
// never both observe a free space and both insert.  The caller must
// commit or roll back the transaction to release the lock.
func (r *FacilityRepo) FirstForUpdateTx(ctx context.Context, tx *sql.Tx) (*model.Facility, error) {
	const q = `SELECT id, name, total_spaces, created_at, updated_at
	           FROM facilities ORDER BY id LIMIT 1 FOR UPDATE`
	var f model.Facility
	err := tx.QueryRowContext(ctx, q).Scan(&f.ID, &f.Name, &f.TotalSpaces, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CountActiveTickets returns the number of tickets currently
// occupying a space in the facility.  This unlocked variant serves
// display reads such as the free-spaces endpoint; the result may be
// marginally stale, which is acceptable because nothing is mutated.
func (r *FacilityRepo) CountActiveTickets(ctx context.Context, facilityID uint64) (uint32, error) {
	return r.countActive(ctx, r.db.QueryRowContext, facilityID)
}

// CountActiveTicketsTx counts active tickets inside a transaction.
// Used under the facility row lock during admission so the count is
// consistent with the decision to insert.
func (r *FacilityRepo) CountActiveTicketsTx(ctx context.Context, tx *sql.Tx, facilityID uint64) (uint32, error) {
	return r.countActive(ctx, tx.QueryRowContext, facilityID)
}

type rowQuerier func(ctx context.Context, query string, args ...any) *sql.Row

func (r *FacilityRepo) countActive(ctx context.Context, queryRow rowQuerier, facilityID uint64) (uint32, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE facility_id = ? AND status = ?`
	var n uint32
	if err := queryRow(ctx, q, facilityID, model.StatusActive).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
