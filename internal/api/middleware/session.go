package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

const (
	// CookieName is the signed cookie that carries the session token.
	CookieName = "course_session"

	// ContextKeySession holds the domain.Session of the current request.
	ContextKeySession = "session"

	tokenValue      = "sid"
	contextKeyToken = "session_token"
)

// CurrentSession returns the session attached to the request. ok is false
// when no authenticated identity is present; callers must not read Role then.
func CurrentSession(c echo.Context) (s domain.Session, ok bool) {
	s, _ = c.Get(ContextKeySession).(domain.Session)
	return s, s.Authenticated()
}

// SetSession attaches s to the request context.
func SetSession(c echo.Context, s domain.Session) {
	c.Set(ContextKeySession, s)
}

// Sessions ties the signed cookie (gorilla/sessions through echo-contrib) to
// the server-side store. The cookie only ever holds the opaque token.
type Sessions struct {
	store  ports.SessionStore
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
}

func NewSessions(store ports.SessionStore, ttl time.Duration, secure bool, log zerolog.Logger) *Sessions {
	return &Sessions{store: store, ttl: ttl, secure: secure, log: log}
}

// CookieStore builds the gorilla cookie store signed with secret.
func CookieStore(secret string) sessions.Store {
	return sessions.NewCookieStore([]byte(secret))
}

// Load resolves the cookie token against the store and attaches the session
// to the request. Missing, tampered or expired cookies leave the request
// anonymous; guards decide what that means.
func (m *Sessions) Load() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := session.Get(CookieName, c)
			if err != nil {
				m.log.Debug().Err(err).Msg("unreadable session cookie")
				return next(c)
			}
			token, _ := cookie.Values[tokenValue].(string)
			if token == "" {
				return next(c)
			}

			s, err := m.store.Get(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrNoSession) {
					m.log.Warn().Err(err).Msg("session store unavailable, treating request as anonymous")
				}
				return next(c)
			}

			SetSession(c, *s)
			c.Set(contextKeyToken, token)
			return next(c)
		}
	}
}

// Start persists s and points the cookie at it. A session the request
// already carried is deleted once the cookie has been rewritten.
func (m *Sessions) Start(c echo.Context, s domain.Session) error {
	previous, _ := c.Get(contextKeyToken).(string)

	token, err := m.store.Create(c.Request().Context(), s)
	if err != nil {
		return err
	}

	cookie, err := session.Get(CookieName, c)
	if cookie == nil {
		return err
	}
	cookie.Options = m.options(int(m.ttl.Seconds()))
	cookie.Values[tokenValue] = token
	if err := cookie.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	if previous != "" && previous != token {
		if err := m.store.Delete(c.Request().Context(), previous); err != nil {
			m.log.Warn().Err(err).Msg("failed to delete replaced session")
		}
	}

	SetSession(c, s)
	c.Set(contextKeyToken, token)
	return nil
}

// End deletes the server-side session and expires the cookie.
func (m *Sessions) End(c echo.Context) error {
	if token, _ := c.Get(contextKeyToken).(string); token != "" {
		if err := m.store.Delete(c.Request().Context(), token); err != nil {
			m.log.Warn().Err(err).Msg("failed to delete session")
		}
	}

	cookie, err := session.Get(CookieName, c)
	if cookie == nil {
		return err
	}
	cookie.Options = m.options(-1)
	delete(cookie.Values, tokenValue)
	c.Set(ContextKeySession, domain.Session{})
	return cookie.Save(c.Request(), c.Response())
}

func (m *Sessions) options(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
