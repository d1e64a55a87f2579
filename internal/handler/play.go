package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// PlayHandler serves play CRUD and the filtered catalogue listing.
type PlayHandler struct {
	Plays *repository.PlayRepo
}

// NewPlayHandler wires the play endpoints to their repository.
func NewPlayHandler(plays *repository.PlayRepo) *PlayHandler {
	return &PlayHandler{Plays: plays}
}

type playReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

// Create handles POST /plays.
func (h *PlayHandler) Create(c echo.Context) error {
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &model.Play{Title: req.Title, Description: req.Description}
	if err := h.Plays.Create(ctx, p, req.Genres, req.Actors); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create play"})
	}

	created, err := h.Plays.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load play"})
	}
	return c.JSON(http.StatusCreated, created)
}

// List handles GET /plays with optional filters: title (exact match),
// genres and actors (comma separated id lists, OR within each list).
func (h *PlayHandler) List(c echo.Context) error {
	filter := repository.PlayFilter{Title: c.QueryParam("title")}

	var err error
	if filter.GenreIDs, err = parseIDList(c.QueryParam("genres")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "genres must be a comma separated list of ids"})
	}
	if filter.ActorIDs, err = parseIDList(c.QueryParam("actors")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actors must be a comma separated list of ids"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Plays.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list plays"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Get handles GET /plays/:id.
func (h *PlayHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Plays.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load play"})
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /plays/:id.
func (h *PlayHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &model.Play{ID: id, Title: req.Title, Description: req.Description}
	if err := h.Plays.Update(ctx, p, req.Genres, req.Actors); err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update play"})
	}

	updated, err := h.Plays.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load play"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /plays/:id.
func (h *PlayHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Plays.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete play"})
	}
	return c.NoContent(http.StatusNoContent)
}

// parseIDList parses a comma separated id list query parameter.  An
// empty parameter yields a nil slice.
func parseIDList(raw string) ([]uint64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
