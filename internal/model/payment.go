package model

import "time"

// Payment method values accepted on the payments endpoint.
const (
	MethodCreditCard = "credit_card"
	MethodDebitCard  = "debit_card"
	MethodCash       = "cash"
)

// Payment is one entry in a ticket's append-only payment ledger.
// A ticket may accumulate several payments over its life when the
// grace window lapses between paying and leaving.  Rows are never
// mutated or deleted.  This struct corresponds to a row in the
// `payments` table.
//
// Fields:
//  ID          – primary key identifier.
//  TicketID    – ticket this payment belongs to.
//  AmountCents – amount charged in cents (> 0 enforced at write).
//  Method      – one of credit_card, debit_card, cash.
//  PaidAt      – timestamp the payment was applied.
//  CreatedAt   – creation timestamp.
type Payment struct {
	ID          uint64    // payments.id
	TicketID    uint64    // payments.ticket_id
	AmountCents uint32    // payments.amount_cents
	Method      string    // payments.method
	PaidAt      time.Time // payments.paid_at
	CreatedAt   time.Time // payments.created_at
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodCash:
		return true
	}
	return false
}
