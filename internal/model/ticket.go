package model

import "time"

// Ticket status values.  A ticket only ever moves active -> returned;
// there is no other transition.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
)

// GraceWindow is how long a ticket counts as paid after a successful
// payment.  The window slides: every payment resets it, and once it
// lapses the ticket owes money again even though payments exist in
// its history.
const GraceWindow = 15 * time.Minute

// Ticket is an issued parking ticket.  It snapshots the price in
// effect at entry and accumulates payments until it is returned.
// Tickets are never deleted; returned tickets stay around as the
// audit trail.  This struct corresponds to a row in the `tickets`
// table.
//
// Fields:
//  ID         – primary key identifier.
//  Barcode    – globally unique 16 hex character identifier.
//  FacilityID – facility the ticket was issued against.
//  PriceID    – price row snapshotted at entry.
//  IssuedAt   – set once at creation, never mutated.
//  Status     – active or returned.
//  ReturnedAt – set exactly once, when the ticket is returned.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
//  Price      – loaded price snapshot with its currency.
//  Payments   – loaded payment history.
type Ticket struct {
	ID         uint64     // tickets.id
	Barcode    string     // tickets.barcode
	FacilityID uint64     // tickets.facility_id
	PriceID    uint64     // tickets.price_id
	IssuedAt   time.Time  // tickets.issued_at
	Status     string     // tickets.status
	ReturnedAt *time.Time // tickets.returned_at (nullable)
	CreatedAt  time.Time  // tickets.created_at
	UpdatedAt  time.Time  // tickets.updated_at

	Price    *Price
	Payments []Payment
}

// LatestPayment returns the most recent payment by paid_at, or nil
// when the ticket has no payments.  When two payments share the same
// paid_at the one appearing later in the slice wins, which matches
// the repository ordering by (paid_at, id).
func (t *Ticket) LatestPayment() *Payment {
	var latest *Payment
	for i := range t.Payments {
		p := &t.Payments[i]
		if latest == nil || !p.PaidAt.Before(latest.PaidAt) {
			latest = p
		}
	}
	return latest
}

// IsPaid reports whether the ticket counts as paid at the given
// instant: a payment exists and no more than GraceWindow has elapsed
// since the latest one.  The answer is always derived from the
// payment history, never stored.
func (t *Ticket) IsPaid(at time.Time) bool {
	p := t.LatestPayment()
	if p == nil {
		return false
	}
	return at.Sub(p.PaidAt) <= GraceWindow
}

// PriceToPay computes the amount owed in cents at the given instant.
// Billing restarts at every successful payment: the clock runs from
// the latest payment when one exists, otherwise from issuance.  Every
// started hour is charged in full.  A ticket that is currently paid
// owes nothing.
func (t *Ticket) PriceToPay(at time.Time) uint32 {
	if t.IsPaid(at) {
		return 0
	}
	from := t.IssuedAt
	if p := t.LatestPayment(); p != nil {
		from = p.PaidAt
	}
	elapsed := at.Sub(from)
	if elapsed <= 0 {
		return 0
	}
	hours := uint32(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}
	return hours * t.Price.PerHourCents
}

// PriceToPayFormatted renders the amount owed with the snapshot
// currency symbol, e.g. "4.00 €".
func (t *Ticket) PriceToPayFormatted(at time.Time) string {
	return t.Price.Currency.FormatAmount(t.PriceToPay(at))
}

// StateFormatted renders the paid predicate as the wire value used by
// the state endpoint.
func (t *Ticket) StateFormatted(at time.Time) string {
	if t.IsPaid(at) {
		return "paid"
	}
	return "unpaid"
}
