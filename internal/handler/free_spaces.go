package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parkhaus/parking-ticket-service/internal/repository"
)

// FreeSpacesHandler reports the facility's occupancy.  Availability
// is computed from the active ticket count, never stored, so this
// read needs no lock; the answer may be marginally stale under
// concurrent admissions.
type FreeSpacesHandler struct {
	FacilityRepo *repository.FacilityRepo
}

// NewFreeSpacesHandler constructs a FreeSpacesHandler.  The
// repository must be non-nil.
func NewFreeSpacesHandler(facilityRepo *repository.FacilityRepo) *FreeSpacesHandler {
	if facilityRepo == nil {
		panic("nil repository passed to NewFreeSpacesHandler")
	}
	return &FreeSpacesHandler{FacilityRepo: facilityRepo}
}

// Index handles GET /api/free-spaces.
func (h *FreeSpacesHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	facility, err := h.FacilityRepo.First(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "no parking lot facility available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	active, err := h.FacilityRepo.CountActiveTickets(ctx, facility.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	available := uint32(0)
	if active < facility.TotalSpaces {
		available = facility.TotalSpaces - active
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available_spaces": available,
		"total_spaces":     facility.TotalSpaces,
	})
}
