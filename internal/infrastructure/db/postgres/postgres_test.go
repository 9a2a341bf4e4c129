package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub/course-portal/internal/core/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}, true},
		{"eof", fmt.Errorf("receive message: %w", io.ErrUnexpectedEOF), true},
		{"deadline", context.DeadlineExceeded, true},
		{"syntax", &pgconn.PgError{Code: "42601", Message: "syntax error"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		err := classify(nil, "exec", tc.err)
		if got := errors.Is(err, domain.ErrConnectionFailure); got != tc.want {
			t.Fatalf("%s: connection failure = %v, want %v (%v)", tc.name, got, tc.want, err)
		}
		if !errors.Is(err, tc.err) && !tc.want {
			t.Fatalf("%s: cause lost: %v", tc.name, err)
		}
	}
}

// stalledServer accepts TCP connections and never answers, like a database
// host that has stopped responding. stop drops every held connection.
func stalledServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	stop = func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	}
	return ln.Addr().String(), stop
}

func TestCourseRepository_StatementDeadline(t *testing.T) {
	addr, stop := stalledServer(t)
	pool, err := pgxpool.New(context.Background(), "postgres://course:course@"+addr+"/course?sslmode=disable")
	if err != nil {
		stop()
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(func() {
		stop()
		pool.Close()
	})

	repo := NewCourseRepository(pool)
	repo.timeout = 100 * time.Millisecond

	start := time.Now()
	_, err = repo.List(context.Background())
	if !errors.Is(err, domain.ErrConnectionFailure) {
		t.Fatalf("expected ErrConnectionFailure, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("List blocked for %v despite the deadline", elapsed)
	}
}
