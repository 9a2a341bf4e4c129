package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-portal/internal/api/middleware"
	"github.com/learnhub/course-portal/internal/core/domain"
)

// actor returns the session placed on the context by the auth middleware.
// The guards have normally rejected anonymous callers already; this is the
// fast-fail for routes wired without them.
func actor(c echo.Context) (domain.Session, error) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return s, nil
}

// courseID parses the {id} path segment. Anything but an integer is a 404,
// as if the route had not matched.
func courseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

// ErrorStatus maps an error onto the HTTP status and the message shown to the
// client. Unknown errors map to a generic 500; known is false for them so the
// caller can log the cause.
func ErrorStatus(err error) (code int, msg string, known bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m, true
		}
		return he.Code, http.StatusText(he.Code), true
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access Denied: Educator role required.", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return http.StatusConflict, "a request with this Idempotency-Key is still in progress", true
	case errors.Is(err, domain.ErrConnectionFailure):
		return http.StatusInternalServerError, "database connection failed", true
	}
	return http.StatusInternalServerError, "internal server error", false
}
