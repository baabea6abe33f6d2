// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type discriminators carried in the "type" field of every
// message on the parking.events queue.
const (
	TypeTicketIssued    = "ticket.issued"
	TypePaymentRecorded = "payment.recorded"
	TypeTicketReturned  = "ticket.returned"
)

// TicketIssuedEvent is published when an admission succeeds.  It
// contains enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type TicketIssuedEvent struct {
	Type         string `json:"type"`
	Barcode      string `json:"barcode"`
	FacilityName string `json:"facility_name"`
	IssuedAt     string `json:"issued_at"`
}

// PaymentRecordedEvent is published when a new payment is appended to
// a ticket's ledger.  Idempotent replays of an existing payment do
// not publish.
type PaymentRecordedEvent struct {
	Type        string `json:"type"`
	Barcode     string `json:"barcode"`
	AmountCents uint32 `json:"amount_cents"`
	Method      string `json:"payment_method"`
	PaidAt      string `json:"paid_at"`
}

// TicketReturnedEvent is published when a ticket transitions to
// returned and frees its space.
type TicketReturnedEvent struct {
	Type       string `json:"type"`
	Barcode    string `json:"barcode"`
	ReturnedAt string `json:"returned_at"`
}
