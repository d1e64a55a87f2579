package handler

// Genre and actor endpoints.  Both are thin CRUD over reference data;
// the interesting catalogue behaviour (filtering, linking) lives in the
// play handler.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// GenreHandler serves genre CRUD.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

// NewGenreHandler wires the genre endpoints to their repository.
func NewGenreHandler(genres *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{Genres: genres}
}

type genreReq struct {
	Name string `json:"name"`
}

// Create handles POST /genres.
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g := &model.Genre{Name: req.Name}
	if err := h.Genres.Create(ctx, g); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create genre"})
	}
	return c.JSON(http.StatusCreated, g)
}

// List handles GET /genres.
func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list genres"})
	}
	return c.JSON(http.StatusOK, genres)
}

// Get handles GET /genres/:id.
func (h *GenreHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load genre"})
	}
	return c.JSON(http.StatusOK, g)
}

// Update handles PUT /genres/:id.
func (h *GenreHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req genreReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g := &model.Genre{ID: id, Name: req.Name}
	if err := h.Genres.Update(ctx, g); err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update genre"})
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /genres/:id.
func (h *GenreHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Genres.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete genre"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ActorHandler serves actor CRUD.
type ActorHandler struct {
	Actors *repository.ActorRepo
}

// NewActorHandler wires the actor endpoints to their repository.
func NewActorHandler(actors *repository.ActorRepo) *ActorHandler {
	return &ActorHandler{Actors: actors}
}

type actorReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// actorResp includes the derived full name alongside the raw parts.
type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func toActorResp(a *model.Actor) actorResp {
	return actorResp{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

// Create handles POST /actors.
func (h *ActorHandler) Create(c echo.Context) error {
	var req actorReq
	if err := c.Bind(&req); err != nil || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &model.Actor{FirstName: req.FirstName, LastName: req.LastName}
	if err := h.Actors.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create actor"})
	}
	return c.JSON(http.StatusCreated, toActorResp(a))
}

// List handles GET /actors.
func (h *ActorHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	actors, err := h.Actors.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list actors"})
	}
	out := make([]actorResp, 0, len(actors))
	for _, a := range actors {
		out = append(out, toActorResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /actors/:id.
func (h *ActorHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Actors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load actor"})
	}
	return c.JSON(http.StatusOK, toActorResp(a))
}

// Update handles PUT /actors/:id.
func (h *ActorHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req actorReq
	if err := c.Bind(&req); err != nil || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := &model.Actor{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := h.Actors.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update actor"})
	}
	return c.JSON(http.StatusOK, toActorResp(a))
}

// Delete handles DELETE /actors/:id.
func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Actors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete actor"})
	}
	return c.NoContent(http.StatusNoContent)
}
