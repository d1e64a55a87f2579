// Package router registers all HTTP routes.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
)

// Handlers bundles everything the router needs to register routes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Halls        *handler.TheatreHallHandler
	Genres       *handler.GenreHandler
	Actors       *handler.ActorHandler
	Plays        *handler.PlayHandler
	Performances *handler.PerformanceHandler
	Reservations *handler.ReservationHandler
}

// Register wires all routes onto the echo instance.  Public catalogue
// reads sit behind the response cache and the rate limiter; writes
// require a staff JWT; reservations require any authenticated user.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rateLimit := middleware.RateLimit(rdb, config.LoadRateLimitConfig())
	cache := middleware.ResponseCache(rdb, config.LoadCacheConfig())
	auth := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireWrite()

	e.GET("/health", handler.Health)

	v1 := e.Group("/api/v1", rateLimit)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me, auth)

	// public catalogue reads
	v1.GET("/theatre-halls", h.Halls.List, cache)
	v1.GET("/theatre-halls/:id", h.Halls.Get, cache)
	v1.GET("/genres", h.Genres.List, cache)
	v1.GET("/genres/:id", h.Genres.Get, cache)
	v1.GET("/actors", h.Actors.List, cache)
	v1.GET("/actors/:id", h.Actors.Get, cache)
	v1.GET("/plays", h.Plays.List, cache)
	v1.GET("/plays/:id", h.Plays.Get, cache)
	v1.GET("/performances", h.Performances.List, cache)
	v1.GET("/performances/:id", h.Performances.Get)
	v1.GET("/performances/:id/availability", h.Performances.GetAvailability)

	// staff-only catalogue and scheduling writes
	v1.POST("/theatre-halls", h.Halls.Create, auth, staff)
	v1.PUT("/theatre-halls/:id", h.Halls.Update, auth, staff)
	v1.DELETE("/theatre-halls/:id", h.Halls.Delete, auth, staff)
	v1.POST("/genres", h.Genres.Create, auth, staff)
	v1.PUT("/genres/:id", h.Genres.Update, auth, staff)
	v1.DELETE("/genres/:id", h.Genres.Delete, auth, staff)
	v1.POST("/actors", h.Actors.Create, auth, staff)
	v1.PUT("/actors/:id", h.Actors.Update, auth, staff)
	v1.DELETE("/actors/:id", h.Actors.Delete, auth, staff)
	v1.POST("/plays", h.Plays.Create, auth, staff)
	v1.PUT("/plays/:id", h.Plays.Update, auth, staff)
	v1.DELETE("/plays/:id", h.Plays.Delete, auth, staff)
	v1.POST("/performances", h.Performances.Create, auth, staff)
	v1.PUT("/performances/:id", h.Performances.Update, auth, staff)
	v1.DELETE("/performances/:id", h.Performances.Delete, auth, staff)

	// reservations, scoped to the authenticated user
	v1.POST("/reservations", h.Reservations.Create, auth)
	v1.GET("/reservations", h.Reservations.List, auth)
}
