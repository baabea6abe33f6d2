package model

import "time"

// Price is a per-hour rate attached to a facility.  A facility
// accumulates a history of prices; the most recently created one
// is the rate offered to new tickets.  Tickets snapshot the price
// row in effect at entry, so later rate changes never affect an
// already issued ticket.  This struct corresponds to a row in the
// `prices` table.
//
// Fields:
//  ID           – primary key identifier.
//  FacilityID   – facility this rate belongs to.
//  CurrencyID   – currency the rate is denominated in.
//  PerHourCents – rate in cents for every started hour (> 0).
//  CreatedAt    – creation timestamp; ordering key for "current".
//  Currency     – loaded currency row, populated by the repository.
type Price struct {
	ID           uint64    // prices.id
	FacilityID   uint64    // prices.facility_id
	CurrencyID   uint64    // prices.currency_id
	PerHourCents uint32    // prices.per_hour_cents
	CreatedAt    time.Time // prices.created_at

	Currency *Currency
}
