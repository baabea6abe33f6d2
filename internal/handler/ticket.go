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

// TicketHandler groups the repositories needed to issue, display and
// return parking tickets.  Issuing and returning run their critical
// DB operations inside a transaction holding a row lock, so that
// capacity checks and status changes stay atomic under concurrent
// requests.  Display reads run unlocked and may observe slightly
// stale state.
type TicketHandler struct {
	FacilityRepo *repository.FacilityRepo
	PriceRepo    *repository.PriceRepo
	TicketRepo   *repository.TicketRepo
	PaymentRepo  *repository.PaymentRepo
}

// NewTicketHandler constructs a TicketHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewTicketHandler(facilityRepo *repository.FacilityRepo, priceRepo *repository.PriceRepo, ticketRepo *repository.TicketRepo, paymentRepo *repository.PaymentRepo) *TicketHandler {
	if facilityRepo == nil || priceRepo == nil || ticketRepo == nil || paymentRepo == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{
		FacilityRepo: facilityRepo,
		PriceRepo:    priceRepo,
		TicketRepo:   ticketRepo,
		PaymentRepo:  paymentRepo,
	}
}

// Create handles POST /api/tickets.  It admits a car by issuing a new
// active ticket against the facility's capacity.  The capacity check
// and the ticket insert run while holding an exclusive lock on the
// facility row, so concurrent admissions are serialized and the lot
// can never be overbooked.  The barcode is generated before the lock
// is taken; uniqueness is independently enforced by the DB index.
// Responds 201 with the barcode, 503 when the lot is full or not
// configured, 500 when barcode generation is exhausted.
func (h *TicketHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	facility, err := h.FacilityRepo.First(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no parking lot facility available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	price, err := h.PriceRepo.LatestByFacility(ctx, facility.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPriceConfigured) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no price configured for parking lot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	barcode, err := h.TicketRepo.GenerateBarcode(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrBarcodeExhausted) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.FacilityRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the facility row so the capacity check and the insert are
	// atomic with respect to concurrent admissions.
	locked, err := h.FacilityRepo.FirstForUpdateTx(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no parking lot facility available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	active, err := h.FacilityRepo.CountActiveTicketsTx(ctx, tx, locked.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if active >= locked.TotalSpaces {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": repository.ErrFacilityFull.Error()})
	}

	ticket := &model.Ticket{
		Barcode:    barcode,
		FacilityID: locked.ID,
		PriceID:    price.ID,
		IssuedAt:   time.Now().UTC(),
		Status:     model.StatusActive,
	}
	if err := h.TicketRepo.CreateTx(ctx, tx, ticket); err != nil {
		// The collision check raced a concurrent insert: fall back to
		// the unique index and try once with a fresh barcode.
		if repository.IsDuplicateBarcode(err) {
			ticket.Barcode, err = h.TicketRepo.GenerateBarcode(ctx)
			if err == nil {
				err = h.TicketRepo.CreateTx(ctx, tx, ticket)
			}
		}
		if err != nil {
			if errors.Is(err, repository.ErrBarcodeExhausted) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	go func() {
		// Request context ends with the response; publishing gets its own.
		_ = queue_publisher.PublishTicketIssued(context.Background(), queue.TicketIssuedEvent{
			Barcode:      ticket.Barcode,
			FacilityName: locked.Name,
			IssuedAt:     ticket.IssuedAt.UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"barcode":   ticket.Barcode,
		"issued_at": ticket.IssuedAt.UTC().Format(time.RFC3339),
	})
}

// Show handles GET /api/tickets/:barcode.  It returns the ticket and
// the amount currently owed, formatted with the snapshot currency.
func (h *TicketHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	ticket, err := h.TicketRepo.GetByBarcode(ctx, c.Param("barcode"))
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"barcode":   ticket.Barcode,
		"issued_at": ticket.IssuedAt.UTC().Format(time.RFC3339),
		"price":     ticket.PriceToPayFormatted(time.Now().UTC()),
	})
}

// State handles GET /api/tickets/:barcode/state.  It reports whether
// the ticket counts as paid right now, i.e. whether the latest
// payment is still inside the grace window.
func (h *TicketHandler) State(c echo.Context) error {
	ctx := c.Request().Context()
	ticket, err := h.TicketRepo.GetByBarcode(ctx, c.Param("barcode"))
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"barcode": ticket.Barcode,
		"state":   ticket.StateFormatted(time.Now().UTC()),
	})
}

// Update handles PUT /api/tickets/:barcode.  The only accepted status
// is "returned"; a ticket must be paid at the moment of the check to
// be returned.  The check and the write run under the ticket row lock
// so a concurrent payment cannot race the close.  Returning an
// already returned ticket is an idempotent no-op that keeps the
// original returned_at.
func (h *TicketHandler) Update(c echo.Context) error {
	var body struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status != model.StatusReturned {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": repository.ErrInvalidStatus.Error()})
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

	ticket, err := h.TicketRepo.GetByBarcodeForUpdateTx(ctx, tx, c.Param("barcode"))
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}

	if ticket.Status == model.StatusReturned {
		// Already returned: succeed without re-checking payment or
		// touching returned_at.
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
		}
		committed = true
		return c.JSON(http.StatusOK, echo.Map{
			"barcode":     ticket.Barcode,
			"status":      ticket.Status,
			"returned_at": ticket.ReturnedAt.UTC().Format(time.RFC3339),
		})
	}

	now := time.Now().UTC()
	if !ticket.IsPaid(now) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": repository.ErrNotPaid.Error()})
	}
	if err := h.TicketRepo.MarkReturnedTx(ctx, tx, ticket.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ticket"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	go func() {
		_ = queue_publisher.PublishTicketReturned(context.Background(), queue.TicketReturnedEvent{
			Barcode:    ticket.Barcode,
			ReturnedAt: now.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"barcode":     ticket.Barcode,
		"status":      model.StatusReturned,
		"returned_at": now.Format(time.RFC3339),
	})
}
