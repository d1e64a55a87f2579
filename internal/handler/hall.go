package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// TheatreHallHandler serves hall CRUD.  Reads are public; writes are
// restricted to staff by the router.
type TheatreHallHandler struct {
	Halls *repository.TheatreHallRepo
}

// NewTheatreHallHandler wires the hall endpoints to their repository.
func NewTheatreHallHandler(halls *repository.TheatreHallRepo) *TheatreHallHandler {
	return &TheatreHallHandler{Halls: halls}
}

type hallReq struct {
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
}

func (req hallReq) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Rows == 0 || req.SeatsInRow == 0 {
		return errors.New("rows and seats_in_row must be positive")
	}
	return nil
}

// Create handles POST /theatre-halls.
func (h *TheatreHallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall := &model.TheatreHall{Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Halls.Create(ctx, hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create hall"})
	}
	return c.JSON(http.StatusCreated, hall)
}

// List handles GET /theatre-halls.
func (h *TheatreHallHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	halls, err := h.Halls.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list halls"})
	}
	return c.JSON(http.StatusOK, halls)
}

// Get handles GET /theatre-halls/:id.
func (h *TheatreHallHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load hall"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Update handles PUT /theatre-halls/:id.
func (h *TheatreHallHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall := &model.TheatreHall{ID: id, Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Halls.Update(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update hall"})
	}
	return c.JSON(http.StatusOK, hall)
}

// Delete handles DELETE /theatre-halls/:id.
func (h *TheatreHallHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Halls.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete hall"})
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id route parameter shared by all resource
// handlers.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
