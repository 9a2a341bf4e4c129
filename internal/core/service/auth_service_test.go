package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password string, role domain.Role) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := repo.Create(context.Background(), &domain.User{Username: username, PasswordHash: hash, Role: role}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestAuthService_Credentials_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "carol", "s3cret", domain.RoleEducator)
	svc := NewAuthService(repo, domain.LoginCredentials, "secret", time.Hour, discardLogger)

	sess, err := svc.Login(context.Background(), ports.LoginInput{Username: "carol", Password: "s3cret", Role: "Learner"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	// The stored role wins over anything the client submits.
	if sess.User != "carol" || sess.Role != domain.RoleEducator {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestAuthService_Credentials_Rejections(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "dave", "goodpass", domain.RoleLearner)
	svc := NewAuthService(repo, domain.LoginCredentials, "secret", time.Hour, discardLogger)

	cases := []ports.LoginInput{
		{Username: "dave", Password: "badpass"},
		{Username: "ghost", Password: "pass"},
		{Username: "dave"},
		{Password: "goodpass"},
	}
	for _, in := range cases {
		sess, err := svc.Login(context.Background(), in)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%+v: expected ErrInvalidCredentials, got %v", in, err)
		}
		if sess != nil {
			t.Fatalf("%+v: expected no session, got %+v", in, sess)
		}
	}
}

func TestAuthService_Credentials_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = domain.ErrConnectionFailure
	svc := NewAuthService(repo, domain.LoginCredentials, "secret", time.Hour, discardLogger)

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "a", Password: "b"}); !errors.Is(err, domain.ErrConnectionFailure) {
		t.Fatalf("expected ErrConnectionFailure, got %v", err)
	}
}

func TestAuthService_Assertion(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), domain.LoginAssertion, "secret", time.Hour, discardLogger)

	sess, err := svc.Login(context.Background(), ports.LoginInput{Username: "erin", Role: "Educator"})
	if err != nil {
		t.Fatalf("assertion login failed: %v", err)
	}
	if sess.User != "erin" || sess.Role != domain.RoleEducator {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "erin"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing role: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "erin", Role: "Admin"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown role: expected ErrValidation, got %v", err)
	}
}

func TestAuthService_IssueToken(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), domain.LoginCredentials, "secret", time.Hour, discardLogger)

	token, err := svc.IssueToken(domain.Session{User: "carol", Role: domain.RoleEducator})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["username"] != "carol" || claims["role"] != "Educator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.IssueToken(domain.Session{Role: domain.RoleEducator}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous session: expected ErrUnauthenticated, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if _, err := HashPassword(""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}
