package ports

import (
	"context"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// UserRepository reads credential records. Create is used only by the
// operator CLI.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// SessionStore keeps session state outside the process, keyed by an opaque
// token.
type SessionStore interface {
	Create(ctx context.Context, s domain.Session) (string, error)
	// Get returns domain.ErrNoSession for unknown or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}
