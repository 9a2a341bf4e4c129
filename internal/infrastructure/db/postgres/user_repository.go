package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const (
	findUser   = `SELECT Username, Password, UserRole FROM Users WHERE Username = $1`
	insertUser = `INSERT INTO Users (Username, Password, UserRole) VALUES ($1, $2, $3)`

	uniqueViolation = "23505"
)

// UserRepository reads credential records from the Users table.
type UserRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, timeout: defaultTimeout}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	var (
		u    domain.User
		role string
	)
	if err := conn.QueryRow(ctx, findUser, username).Scan(&u.Username, &u.PasswordHash, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classify(conn, "find user", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, insertUser, user.Username, user.PasswordHash, string(user.Role)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserExists
		}
		return classify(conn, "insert user", err)
	}
	return nil
}
