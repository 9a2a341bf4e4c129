package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-portal/internal/api/middleware"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

type stubCourseService struct {
	listFn   func(ctx context.Context) ([]domain.Course, error)
	createFn func(ctx context.Context, in ports.CreateCourseInput) (*ports.CreateCourseResult, error)
	updateFn func(ctx context.Context, in ports.UpdateCourseInput) (int64, error)
	deleteFn func(ctx context.Context, in ports.DeleteCourseInput) (int64, error)
	searchFn func(ctx context.Context, keyword string) ([]domain.Course, error)
}

func (s *stubCourseService) List(ctx context.Context) ([]domain.Course, error) {
	return s.listFn(ctx)
}

func (s *stubCourseService) Create(ctx context.Context, in ports.CreateCourseInput) (*ports.CreateCourseResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubCourseService) Update(ctx context.Context, in ports.UpdateCourseInput) (int64, error) {
	return s.updateFn(ctx, in)
}

func (s *stubCourseService) Delete(ctx context.Context, in ports.DeleteCourseInput) (int64, error) {
	return s.deleteFn(ctx, in)
}

func (s *stubCourseService) Search(ctx context.Context, keyword string) ([]domain.Course, error) {
	return s.searchFn(ctx, keyword)
}

type stubAuthService struct {
	loginFn func(ctx context.Context, in ports.LoginInput) (*domain.Session, error)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) IssueToken(sess domain.Session) (string, error) {
	return "token-for-" + sess.User, nil
}

type stubSessions struct {
	started *domain.Session
	ended   bool
}

func (s *stubSessions) Start(_ echo.Context, sess domain.Session) error {
	s.started = &sess
	return nil
}

func (s *stubSessions) End(_ echo.Context) error {
	s.ended = true
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Renderer = NewRenderer()
	return e
}

// newContext builds a request context. body is sent as JSON when it starts
// with '{' and as a form otherwise.
func newContext(e *echo.Echo, method, path, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, *sess)
	}
	return c, rec
}

var (
	educator = &domain.Session{User: "alice", Role: domain.RoleEducator}
	learner  = &domain.Session{User: "lee", Role: domain.RoleLearner}
)
