package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/booking"
	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/service"
)

// ReservationHandler serves reservation creation and the caller's
// reservation history.  All endpoints require an authenticated user.
type ReservationHandler struct {
	Manager *booking.Manager

	// PublishEvent is swapped out in tests; defaults to the RabbitMQ
	// publisher.
	PublishEvent func(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// NewReservationHandler wires the reservation endpoints to the booking
// manager.
func NewReservationHandler(m *booking.Manager) *ReservationHandler {
	return &ReservationHandler{Manager: m, PublishEvent: service.PublishReservationCreated}
}

type createReservationReq struct {
	Tickets []booking.SeatRequest `json:"tickets"`
}

// Create handles POST /reservations.  The whole request succeeds or
// fails as one unit: one bad seat means no ticket is booked.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Manager.CreateReservation(ctx, userID, req.Tickets)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrEmptyReservation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation must contain at least one ticket"})
		case errors.Is(err, booking.ErrSeatOutOfRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is outside the hall grid"})
		case errors.Is(err, booking.ErrPerformanceNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "performance does not exist"})
		case errors.Is(err, booking.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is already taken"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create reservation"})
		}
	}

	// Event delivery is best effort; the reservation is already
	// committed.
	ev := queue.ReservationCreatedEvent{
		ReservationID: detail.ID,
		UserID:        userID,
		CreatedAt:     detail.CreatedAt,
		Tickets:       make([]queue.EventTicket, 0, len(detail.Tickets)),
	}
	for _, t := range detail.Tickets {
		ev.Tickets = append(ev.Tickets, queue.EventTicket{
			PerformanceID: t.Performance.ID,
			Row:           t.Row,
			Seat:          t.Seat,
		})
	}
	if h.PublishEvent != nil {
		if err := h.PublishEvent(c.Request().Context(), ev); err != nil {
			log.Printf("publish reservation.created: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, detail)
}

// List handles GET /reservations: the caller's own reservations,
// oldest first, paginated via page and page_size query parameters.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", booking.DefaultPageSize)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Manager.ListReservations(ctx, userID, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	if pageSize > booking.MaxPageSize {
		pageSize = booking.MaxPageSize
	}
	if pageSize <= 0 {
		pageSize = booking.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":      page,
		"page_size": pageSize,
		"results":   items,
	})
}

// queryInt parses an integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
