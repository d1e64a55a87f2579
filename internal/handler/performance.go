package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/booking"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// PerformanceHandler serves performance scheduling and the public
// listings with availability annotations.
type PerformanceHandler struct {
	Performances *repository.PerformanceRepo
	Plays        *repository.PlayRepo
	Halls        *repository.TheatreHallRepo
	Availability *booking.Availability
}

// NewPerformanceHandler wires the performance endpoints to their
// repositories.
func NewPerformanceHandler(performances *repository.PerformanceRepo, plays *repository.PlayRepo, halls *repository.TheatreHallRepo, availability *booking.Availability) *PerformanceHandler {
	return &PerformanceHandler{Performances: performances, Plays: plays, Halls: halls, Availability: availability}
}

type performanceReq struct {
	PlayID        uint64    `json:"play"`
	TheatreHallID uint64    `json:"theatre_hall"`
	ShowTime      time.Time `json:"show_time"`
}

// performanceDetailResp flattens the detail projection for clients:
// the play and hall are embedded, taken seats listed per (row, seat).
type performanceDetailResp struct {
	ID          uint64               `json:"id"`
	ShowTime    time.Time            `json:"show_time"`
	Play        *model.Play          `json:"play"`
	TheatreHall *model.TheatreHall   `json:"theatre_hall"`
	TakenPlaces []repository.SeatRef `json:"taken_places"`
}

// Create handles POST /performances.  The play and hall must exist; a
// dangling reference is reported as a 400 rather than surfacing the
// foreign key error.
func (h *PerformanceHandler) Create(c echo.Context) error {
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PlayID == 0 || req.TheatreHallID == 0 || req.ShowTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "play, theatre_hall and show_time are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Plays.GetByID(ctx, req.PlayID); err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "play does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not verify play"})
	}
	if _, err := h.Halls.GetByID(ctx, req.TheatreHallID); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "theatre hall does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not verify hall"})
	}

	p := &model.Performance{PlayID: req.PlayID, TheatreHallID: req.TheatreHallID, ShowTime: req.ShowTime.UTC()}
	if err := h.Performances.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create performance"})
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /performances with optional filters: date
// (YYYY-MM-DD, matches the calendar day of show_time) and play (id).
func (h *PerformanceHandler) List(c echo.Context) error {
	var filter repository.PerformanceFilter

	if raw := c.QueryParam("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		filter.Date = &day
	}
	if raw := c.QueryParam("play"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil || len(ids) != 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "play must be a single id"})
		}
		filter.PlayID = ids[0]
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Performances.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list performances"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Get handles GET /performances/:id, returning the play, hall and the
// taken seats so clients can render the seating grid.
func (h *PerformanceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Performances.GetDetail(ctx, id, h.Plays, h.Halls)
	if err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load performance"})
	}
	return c.JSON(http.StatusOK, performanceDetailResp{
		ID:          det.ID,
		ShowTime:    det.ShowTime,
		Play:        det.Play,
		TheatreHall: det.Hall,
		TakenPlaces: det.TakenPlaces,
	})
}

// GetAvailability handles GET /performances/:id/availability,
// returning the number of seats still free.
func (h *PerformanceHandler) GetAvailability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	free, err := h.Availability.RemainingSeats(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"performance":       id,
		"tickets_available": free,
	})
}

// Update handles PUT /performances/:id.
func (h *PerformanceHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PlayID == 0 || req.TheatreHallID == 0 || req.ShowTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "play, theatre_hall and show_time are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &model.Performance{ID: id, PlayID: req.PlayID, TheatreHallID: req.TheatreHallID, ShowTime: req.ShowTime.UTC()}
	if err := h.Performances.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update performance"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /performances/:id.
func (h *PerformanceHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Performances.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete performance"})
	}
	return c.NoContent(http.StatusNoContent)
}
