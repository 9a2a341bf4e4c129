package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/course-portal/internal/api/metrics"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

// AuthService implements login in either credential-checked or
// trust-on-assertion mode, and issues API tokens.
type AuthService struct {
	repo      ports.UserRepository
	mode      domain.LoginMode
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, mode domain.LoginMode, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if !mode.Valid() {
		mode = domain.LoginCredentials
	}
	return &AuthService{repo: repo, mode: mode, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Login returns the session the caller should be granted.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	var (
		sess *domain.Session
		err  error
	)
	if s.mode == domain.LoginAssertion {
		sess, err = s.assert(in)
	} else {
		sess, err = s.verify(ctx, in)
	}

	result := "ok"
	switch {
	case err == nil:
		s.logger.Info().Str("user", sess.User).Str("role", string(sess.Role)).Str("mode", string(s.mode)).Msg("login succeeded")
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrValidation):
		result = "rejected"
		s.logger.Info().Str("user", in.Username).Str("mode", string(s.mode)).Msg("login rejected")
	default:
		result = "error"
	}
	metrics.LoginAttemptsTotal.WithLabelValues(string(s.mode), result).Inc()
	return sess, err
}

func (s *AuthService) assert(in ports.LoginInput) (*domain.Session, error) {
	if in.Username == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: username and role are required", domain.ErrValidation)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}
	return &domain.Session{User: in.Username, Role: role}, nil
}

func (s *AuthService) verify(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.Session{User: user.Username, Role: user.Role}, nil
}

// IssueToken signs an HS256 token carrying the session identity.
func (s *AuthService) IssueToken(sess domain.Session) (string, error) {
	if !sess.Authenticated() {
		return "", domain.ErrUnauthenticated
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"username": sess.User,
		"role":     string(sess.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// HashPassword produces the bcrypt hash stored in the Users table.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
