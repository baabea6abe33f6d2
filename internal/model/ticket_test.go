package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eur() *Currency {
	return &Currency{ID: 1, Name: "Euro", Code: "EUR", Symbol: "€"}
}

func newTicket(issuedAt time.Time, perHourCents uint32) *Ticket {
	return &Ticket{
		ID:       1,
		Barcode:  "0123456789abcdef",
		IssuedAt: issuedAt,
		Status:   StatusActive,
		Price:    &Price{ID: 1, PerHourCents: perHourCents, Currency: eur()},
	}
}

func TestTicketPriceToPay(t *testing.T) {
	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ticket := newTicket(issued, 200)

	t.Run("nothing owed at the instant of issuance", func(t *testing.T) {
		assert.EqualValues(t, 0, ticket.PriceToPay(issued))
	})

	t.Run("every started hour charges a full hour", func(t *testing.T) {
		assert.EqualValues(t, 200, ticket.PriceToPay(issued.Add(time.Second)))
		assert.EqualValues(t, 200, ticket.PriceToPay(issued.Add(30*time.Minute)))
		assert.EqualValues(t, 200, ticket.PriceToPay(issued.Add(time.Hour)))
		assert.EqualValues(t, 400, ticket.PriceToPay(issued.Add(time.Hour+time.Second)))
		assert.EqualValues(t, 600, ticket.PriceToPay(issued.Add(2*time.Hour+30*time.Minute)))
	})

	t.Run("non-decreasing step function with steps at hour boundaries", func(t *testing.T) {
		prev := uint32(0)
		for m := 1; m <= 300; m += 7 {
			cur := ticket.PriceToPay(issued.Add(time.Duration(m) * time.Minute))
			assert.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
		// Exactly at the boundary the new hour has not started yet.
		assert.EqualValues(t, 400, ticket.PriceToPay(issued.Add(2*time.Hour)))
		assert.EqualValues(t, 600, ticket.PriceToPay(issued.Add(2*time.Hour+time.Nanosecond)))
	})

	t.Run("owes nothing while paid", func(t *testing.T) {
		paid := newTicket(issued, 200)
		paid.Payments = []Payment{{ID: 1, AmountCents: 400, Method: MethodCash, PaidAt: issued.Add(2 * time.Hour)}}
		assert.EqualValues(t, 0, paid.PriceToPay(issued.Add(2*time.Hour+10*time.Minute)))
	})

	t.Run("billing clock restarts at the latest payment once the window lapses", func(t *testing.T) {
		paid := newTicket(issued, 200)
		paidAt := issued.Add(2 * time.Hour)
		paid.Payments = []Payment{{ID: 1, AmountCents: 400, Method: MethodCash, PaidAt: paidAt}}
		// 16 minutes after paying: one started hour since the payment,
		// not three since issuance.
		assert.EqualValues(t, 200, paid.PriceToPay(paidAt.Add(16*time.Minute)))
		assert.EqualValues(t, 400, paid.PriceToPay(paidAt.Add(time.Hour+time.Minute)))
	})
}

func TestTicketIsPaid(t *testing.T) {
	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("unpaid without payments", func(t *testing.T) {
		ticket := newTicket(issued, 200)
		assert.False(t, ticket.IsPaid(issued.Add(time.Hour)))
	})

	t.Run("sliding window closes after fifteen minutes", func(t *testing.T) {
		ticket := newTicket(issued, 200)
		paidAt := issued.Add(time.Hour)
		ticket.Payments = []Payment{{ID: 1, AmountCents: 200, Method: MethodCreditCard, PaidAt: paidAt}}

		assert.True(t, ticket.IsPaid(paidAt))
		assert.True(t, ticket.IsPaid(paidAt.Add(14*time.Minute)))
		assert.True(t, ticket.IsPaid(paidAt.Add(15*time.Minute)))
		assert.False(t, ticket.IsPaid(paidAt.Add(15*time.Minute+time.Second)))
	})

	t.Run("only the latest payment counts", func(t *testing.T) {
		ticket := newTicket(issued, 200)
		ticket.Payments = []Payment{
			{ID: 1, AmountCents: 200, Method: MethodCash, PaidAt: issued.Add(30 * time.Minute)},
			{ID: 2, AmountCents: 200, Method: MethodCreditCard, PaidAt: issued.Add(2 * time.Hour)},
		}
		at := issued.Add(2*time.Hour + 5*time.Minute)
		assert.True(t, ticket.IsPaid(at))
		require.NotNil(t, ticket.LatestPayment())
		assert.EqualValues(t, 2, ticket.LatestPayment().ID)

		// Well past the latest payment the older one is irrelevant.
		assert.False(t, ticket.IsPaid(issued.Add(3*time.Hour)))
	})

	t.Run("equal paid_at resolves to the later row", func(t *testing.T) {
		ticket := newTicket(issued, 200)
		paidAt := issued.Add(time.Hour)
		ticket.Payments = []Payment{
			{ID: 1, AmountCents: 200, Method: MethodCash, PaidAt: paidAt},
			{ID: 2, AmountCents: 400, Method: MethodDebitCard, PaidAt: paidAt},
		}
		require.NotNil(t, ticket.LatestPayment())
		assert.EqualValues(t, 2, ticket.LatestPayment().ID)
	})
}

func TestTicketStateFormatted(t *testing.T) {
	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ticket := newTicket(issued, 200)
	assert.Equal(t, "unpaid", ticket.StateFormatted(issued.Add(time.Hour)))

	ticket.Payments = []Payment{{ID: 1, AmountCents: 200, Method: MethodCash, PaidAt: issued.Add(time.Hour)}}
	assert.Equal(t, "paid", ticket.StateFormatted(issued.Add(time.Hour+10*time.Minute)))
	assert.Equal(t, "unpaid", ticket.StateFormatted(issued.Add(time.Hour+20*time.Minute)))
}

// Worked example: lot at 2.00 €/h, car enters at 10:00, pays 4.00 € at
// 11:00:30 and leaves at 11:10 inside the grace window.
func TestTicketPayAndReturnScenario(t *testing.T) {
	issued := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ticket := newTicket(issued, 200)

	at1030 := issued.Add(30 * time.Minute)
	assert.Equal(t, "2.00 €", ticket.PriceToPayFormatted(at1030))

	at110030 := issued.Add(time.Hour + 30*time.Second)
	assert.Equal(t, "4.00 €", ticket.PriceToPayFormatted(at110030))

	ticket.Payments = append(ticket.Payments, Payment{
		ID: 1, AmountCents: ticket.PriceToPay(at110030), Method: MethodCreditCard, PaidAt: at110030,
	})
	require.EqualValues(t, 400, ticket.Payments[0].AmountCents)

	at1110 := issued.Add(time.Hour + 10*time.Minute)
	assert.Equal(t, "paid", ticket.StateFormatted(at1110))
	assert.EqualValues(t, 0, ticket.PriceToPay(at1110))

	// Ten minutes later the window has lapsed and the ticket owes
	// money again, billed from the payment.
	at1120 := issued.Add(time.Hour + 20*time.Minute)
	assert.Equal(t, "unpaid", ticket.StateFormatted(at1120))
	assert.EqualValues(t, 200, ticket.PriceToPay(at1120))
}
