package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

func TestAuthHandler_Token_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
		if in.Username != "alice" || in.Password != "secret" {
			t.Fatalf("unexpected args: %+v", in)
		}
		return &domain.Session{User: "alice", Role: domain.RoleEducator}, nil
	}}
	handler := NewAuthHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/auth/token", `{"username":"alice","password":"secret"}`, nil)
	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token-for-alice" || resp.User != "alice" || resp.Role != domain.RoleEducator {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Token_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
		return nil, domain.ErrInvalidCredentials
	}}
	handler := NewAuthHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/auth/token", `{"username":"alice","password":"wrong"}`, nil)
	_ = handler.Token(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Token_MissingUsername(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
		t.Fatalf("should not be called")
		return nil, nil
	}}
	handler := NewAuthHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/auth/token", `{"password":"x"}`, nil)
	_ = handler.Token(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
