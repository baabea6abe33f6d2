package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parkhaus/parking-ticket-service/internal/model"
	"github.com/parkhaus/parking-ticket-service/internal/queue"
	"github.com/parkhaus/parking-ticket-service/internal/repository"
	queue_publisher "github.com/parkhaus/parking-ticket-service/internal/service"
)

// PaymentHandler records payments against a ticket's ledger.  The
// paid check and the payment insert run while holding an exclusive
// lock on the ticket row, so two concurrent requests can never both
// observe "unpaid" and both create a payment.
type PaymentHandler struct {
	TicketRepo  *repository.TicketRepo
	PaymentRepo *repository.PaymentRepo
}

// NewPaymentHandler constructs a PaymentHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewPaymentHandler(ticketRepo *repository.TicketRepo, paymentRepo *repository.PaymentRepo) *PaymentHandler {
	if ticketRepo == nil || paymentRepo == nil {
		panic("nil repository passed to NewPaymentHandler")
	}
	return &PaymentHandler{TicketRepo: ticketRepo, PaymentRepo: paymentRepo}
}

// Create handles POST /api/tickets/:barcode/payments.  When the
// ticket is already paid it returns the latest payment with 200 and
// writes nothing, making concurrent payment attempts idempotent.
// Otherwise it charges the amount currently owed and appends a ledger
// entry, responding 201.  Validation failures roll the transaction
// back without any state change.
func (h *PaymentHandler) Create(c echo.Context) error {
	var body struct {
		PaymentMethod string `json:"payment_method" form:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidPaymentMethod(body.PaymentMethod) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "payment method is not included in the list"})
	}

	ctx := c.Request().Context()
	tx, err := h.TicketRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the ticket row: the paid check and the insert below must be
	// atomic across concurrent payment requests.
	ticket, err := h.TicketRepo.GetByBarcodeForUpdateTx(ctx, tx, c.Param("barcode"))
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}

	now := time.Now().UTC()
	if ticket.IsPaid(now) {
		latest := ticket.LatestPayment()
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
		}
		committed = true
		return c.JSON(http.StatusOK, echo.Map{
			"barcode":        ticket.Barcode,
			"amount":         ticket.Price.Currency.FormatAmount(latest.AmountCents),
			"payment_method": latest.Method,
			"paid_at":        latest.PaidAt.UTC().Format(time.RFC3339),
		})
	}

	amount := ticket.PriceToPay(now)
	if amount == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "amount must be greater than 0"})
	}
	payment := &model.Payment{
		TicketID:    ticket.ID,
		AmountCents: amount,
		Method:      body.PaymentMethod,
		PaidAt:      now,
	}
	if err := h.PaymentRepo.CreateTx(ctx, tx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	go func() {
		_ = queue_publisher.PublishPaymentRecorded(context.Background(), queue.PaymentRecordedEvent{
			Barcode:     ticket.Barcode,
			AmountCents: payment.AmountCents,
			Method:      payment.Method,
			PaidAt:      payment.PaidAt.UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"barcode":        ticket.Barcode,
		"amount":         ticket.Price.Currency.FormatAmount(payment.AmountCents),
		"payment_method": payment.Method,
		"paid_at":        payment.PaidAt.UTC().Format(time.RFC3339),
	})
}
