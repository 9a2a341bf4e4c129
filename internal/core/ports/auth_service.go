package ports

import (
	"context"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// LoginInput is what a login form or token request submits. Role is only
// consulted in assertion mode.
type LoginInput struct {
	Username string
	Password string
	Role     string
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.Session, error)
	IssueToken(s domain.Session) (string, error)
}
