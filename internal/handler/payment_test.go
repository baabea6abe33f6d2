package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parkhaus/parking-ticket-service/internal/repository"
)

func testPaymentHandler() *PaymentHandler {
	return NewPaymentHandler(repository.NewTicketRepo(nil), repository.NewPaymentRepo(nil))
}

func TestPaymentCreateRejectsUnknownMethod(t *testing.T) {
	h := testPaymentHandler()
	for _, method := range []string{"", "bitcoin", "Cash", "credit card"} {
		rec, payload := doJSON(t, h.Create, http.MethodPost, "/api/tickets/abc/payments",
			`{"payment_method":"`+method+`"}`, "abc")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, method)
		assert.Equal(t, "payment method is not included in the list", payload["error"], method)
	}
}

func TestPaymentCreateRejectsMalformedBody(t *testing.T) {
	h := testPaymentHandler()
	rec, payload := doJSON(t, h.Create, http.MethodPost, "/api/tickets/abc/payments", `{"payment_method"`, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", payload["error"])
}
