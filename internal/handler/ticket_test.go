package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhaus/parking-ticket-service/internal/repository"
)

// Validation runs before any transaction is opened, so these handlers
// can be exercised over repositories that carry no live connection.
func testTicketHandler() *TicketHandler {
	return NewTicketHandler(
		repository.NewFacilityRepo(nil),
		repository.NewPriceRepo(nil),
		repository.NewTicketRepo(nil),
		repository.NewPaymentRepo(nil),
	)
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body, barcode string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if barcode != "" {
		c.SetParamNames("barcode")
		c.SetParamValues(barcode)
	}
	require.NoError(t, h(c))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestTicketUpdateRejectsUnknownStatus(t *testing.T) {
	h := testTicketHandler()
	for _, status := range []string{"", "active", "lost", "RETURNED"} {
		rec, payload := doJSON(t, h.Update, http.MethodPut, "/api/tickets/abc", `{"status":"`+status+`"}`, "abc")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, status)
		assert.Equal(t, repository.ErrInvalidStatus.Error(), payload["error"], status)
	}
}

func TestTicketUpdateRejectsMalformedBody(t *testing.T) {
	h := testTicketHandler()
	rec, payload := doJSON(t, h.Update, http.MethodPut, "/api/tickets/abc", `{"status":`, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", payload["error"])
}
