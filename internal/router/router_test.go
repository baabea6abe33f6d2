package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/parkhaus/parking-ticket-service/internal/handler"
	"github.com/parkhaus/parking-ticket-service/internal/repository"
)

func testEcho() *echo.Echo {
	e := echo.New()
	facilityRepo := repository.NewFacilityRepo(nil)
	priceRepo := repository.NewPriceRepo(nil)
	ticketRepo := repository.NewTicketRepo(nil)
	paymentRepo := repository.NewPaymentRepo(nil)
	RegisterRoutes(e,
		handler.NewTicketHandler(facilityRepo, priceRepo, ticketRepo, paymentRepo),
		handler.NewPaymentHandler(ticketRepo, paymentRepo),
		handler.NewFreeSpacesHandler(facilityRepo),
	)
	return e
}

func TestHealthRoute(t *testing.T) {
	e := testEcho()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	e := testEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/garages", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "route not found"}`, rec.Body.String())
}
