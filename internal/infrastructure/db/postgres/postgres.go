package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to open the course database.
type Config struct {
	ConnectionString string
	Timeout          time.Duration
}

// Connect opens a connection pool and verifies connectivity with a ping.
// Failures wrap domain.ErrConnectionFailure.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("%w: SQL_CONNECTION_STRING is empty", domain.ErrConnectionFailure)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres connect: %v", domain.ErrConnectionFailure, err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %v", domain.ErrConnectionFailure, err)
	}

	return pool, nil
}

// acquire hands out one connection for a single statement. The caller must
// Release it on every path.
func acquire(ctx context.Context, pool *pgxpool.Pool) (*pgxpool.Conn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailure, err)
	}
	return conn, nil
}

// withDeadline bounds one acquire-and-run cycle so a stalled server cannot
// hold a handler goroutine forever.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// classify wraps statement errors that mean the database went away with
// domain.ErrConnectionFailure. conn may be nil.
func classify(conn *pgxpool.Conn, op string, err error) error {
	if isConnectionError(err) || (conn != nil && conn.Conn().IsClosed()) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnectionFailure, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionError(err error) bool {
	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	return errors.As(err, &connectErr) ||
		errors.As(err, &netErr) ||
		pgconn.Timeout(err) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// Pinger adapts a pool to the readiness probe.
type Pinger struct {
	Pool *pgxpool.Pool
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
