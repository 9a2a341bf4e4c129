package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// BearerAuth validates the JWT and attaches the session it carries.
func BearerAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			username, _ := claims["username"].(string)
			role, _ := claims["role"].(string)
			if username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing identity")
			}
			parsed, _ := domain.ParseRole(role)
			SetSession(c, domain.Session{User: username, Role: parsed})

			return next(c)
		}
	}
}

type payloadIdentity struct {
	Role     string `json:"role"`
	Educator string `json:"educator"`
}

// payloadUser stands in for the identity when the body names no educator.
const payloadUser = "api-client"

// PayloadRole attaches a session built from the "role" and "educator" fields
// of the JSON body. The body is restored for the handler. The client controls
// these values; this mode exists only for legacy API clients.
func PayloadRole(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var body []byte
			if req.Body != nil {
				var err error
				body, err = io.ReadAll(req.Body)
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
				}
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			var id payloadIdentity
			if len(bytes.TrimSpace(body)) > 0 {
				_ = json.Unmarshal(body, &id)
			}
			user := id.Educator
			if user == "" {
				user = payloadUser
			}
			role, _ := domain.ParseRole(id.Role)
			SetSession(c, domain.Session{User: user, Role: role})

			log.Debug().Str("user", user).Str("role", id.Role).Msg("identity taken from request payload")
			return next(c)
		}
	}
}
