package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/api/middleware"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

// dbUnavailable is the page body served when the store cannot be reached.
const dbUnavailable = "Database connection failed. Please check the database networking settings."

// SessionManager starts and ends browser sessions.
type SessionManager interface {
	Start(c echo.Context, s domain.Session) error
	End(c echo.Context) error
}

// WebHandler serves the server-rendered pages and form posts.
type WebHandler struct {
	courses   ports.CourseService
	auth      ports.AuthService
	sessions  SessionManager
	loginMode domain.LoginMode
	log       zerolog.Logger
}

func NewWebHandler(courses ports.CourseService, auth ports.AuthService, sessions SessionManager, loginMode domain.LoginMode, log zerolog.Logger) *WebHandler {
	return &WebHandler{courses: courses, auth: auth, sessions: sessions, loginMode: loginMode, log: log}
}

// Index handles GET /.
func (h *WebHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

// LoginForm handles GET /login.
func (h *WebHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", h.loginPage("", ""))
}

// Login handles POST /login.
func (h *WebHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", h.loginPage(err.Error(), req.Username))
	}
	if h.loginMode != domain.LoginAssertion && req.Password == "" {
		return c.Render(http.StatusBadRequest, "login.html", h.loginPage("password is required", req.Username))
	}

	sess, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.Render(http.StatusUnauthorized, "login.html", h.loginPage("Invalid username or password.", req.Username))
	case errors.Is(err, domain.ErrValidation):
		return c.Render(http.StatusBadRequest, "login.html", h.loginPage(err.Error(), req.Username))
	default:
		return h.fail(c, err)
	}

	if err := h.sessions.Start(c, *sess); err != nil {
		h.log.Error().Err(err).Str("user", sess.User).Msg("failed to start session")
		return c.String(http.StatusInternalServerError, "Could not start session.")
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// Logout handles GET and POST /logout.
func (h *WebHandler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		h.log.Warn().Err(err).Msg("failed to clear session cookie")
	}
	return c.Redirect(http.StatusFound, "/")
}

// Dashboard handles GET /dashboard.
func (h *WebHandler) Dashboard(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	courses, err := h.courses.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	return c.Render(http.StatusOK, "dashboard.html", dashboardPage{
		User:     who.User,
		Role:     who.Role,
		Courses:  courses,
		Educator: who.HasRole(domain.RoleEducator),
	})
}

// AddCourse handles POST /course/add.
func (h *WebHandler) AddCourse(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	if _, err := h.courses.Create(c.Request().Context(), ports.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Educator:    who.User,
	}); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// UpdateCourse handles POST /course/update/:id.
func (h *WebHandler) UpdateCourse(c echo.Context) error {
	id, err := courseID(c)
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	if _, err := h.courses.Update(c.Request().Context(), ports.UpdateCourseInput{ID: id, Title: req.Title, Actor: who.User}); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// DeleteCourse handles POST /course/delete/:id.
func (h *WebHandler) DeleteCourse(c echo.Context) error {
	id, err := courseID(c)
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	if _, err := h.courses.Delete(c.Request().Context(), ports.DeleteCourseInput{ID: id, Actor: who.User}); err != nil {
		return h.fail(c, err)
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h *WebHandler) loginPage(msg, username string) loginPage {
	return loginPage{Error: msg, AskRole: h.loginMode == domain.LoginAssertion, Username: username}
}

// fail renders err as plain text. Connection failures get the operator hint;
// other unknown causes are logged and hidden.
func (h *WebHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrConnectionFailure) {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("database unavailable")
		return c.String(http.StatusInternalServerError, dbUnavailable)
	}
	code, msg, known := ErrorStatus(err)
	if !known {
		h.log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("page request failed")
	}
	return c.String(code, msg)
}

var _ SessionManager = (*middleware.Sessions)(nil)
