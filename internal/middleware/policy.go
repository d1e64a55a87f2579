package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleStaff may create and modify halls, plays and performances.
// RoleCustomer may browse the catalogue and manage its own
// reservations.
const (
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// RequireWrite guards mutating catalogue and scheduling endpoints.
// Must run after JWTAuth so the role claim is present in the context.
func RequireWrite() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role != RoleStaff {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "staff access required"})
			}
			return next(c)
		}
	}
}
