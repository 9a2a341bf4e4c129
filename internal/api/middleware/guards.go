package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-portal/internal/api/metrics"
	"github.com/learnhub/course-portal/internal/core/domain"
)

// Guard is a predicate over the request's session state. Guards never touch
// the database.
type Guard struct {
	Name  string
	Check func(c echo.Context) error
}

// RoleError is returned by the role guard. It unwraps to domain.ErrForbidden.
type RoleError struct {
	Role domain.Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("Access Denied: %s role required.", e.Role)
}

func (e *RoleError) Unwrap() error {
	return domain.ErrForbidden
}

// Authenticated passes when the request carries a session with a user.
func Authenticated() Guard {
	return Guard{Name: "authenticated", Check: func(c echo.Context) error {
		if _, ok := CurrentSession(c); !ok {
			return domain.ErrUnauthenticated
		}
		return nil
	}}
}

// RequireRole passes when the authenticated session has the given role.
func RequireRole(role domain.Role) Guard {
	return Guard{Name: "role", Check: func(c echo.Context) error {
		s, _ := CurrentSession(c)
		if !s.HasRole(role) {
			return &RoleError{Role: role}
		}
		return nil
	}}
}

// DenyFunc renders the response for a failed guard.
type DenyFunc func(c echo.Context, err error) error

// Chain evaluates guards in order and stops at the first failure, handing it
// to deny. The handler only runs when every guard passes.
func Chain(deny DenyFunc, guards ...Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, g := range guards {
				if err := g.Check(c); err != nil {
					metrics.GuardDenialsTotal.WithLabelValues(g.Name).Inc()
					return deny(c, err)
				}
			}
			return next(c)
		}
	}
}

// HTMLDeny redirects anonymous browsers to the login page and answers role
// failures with a plain-text 403.
func HTMLDeny(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.String(http.StatusForbidden, err.Error())
}

// JSONDeny answers with the API error envelope.
func JSONDeny(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
}
