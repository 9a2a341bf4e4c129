package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/pkg/config"
)

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	if _, err := Open(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpen_PostgresWithoutDSN(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverPostgres}}

	_, err := Open(context.Background(), cfg, zerolog.Nop())
	if !errors.Is(err, domain.ErrConnectionFailure) {
		t.Fatalf("expected ErrConnectionFailure, got %v", err)
	}
}

func TestBackend_CloseWithoutConnection(t *testing.T) {
	var b Backend
	b.Close()
}

func TestAuditDatabase_ReusesBackendClient(t *testing.T) {
	// Connect does not dial until the first operation.
	client, err := mongodriver.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	db := client.Database("course_portal")

	cfg := &config.Config{Mongo: config.MongoConfig{URI: "mongodb://127.0.0.1:1", Database: "course_portal"}}
	got, release, err := AuditDatabase(context.Background(), cfg, &Backend{Mongo: db})
	if err != nil {
		t.Fatalf("AuditDatabase: %v", err)
	}
	release()
	if got != db {
		t.Fatalf("expected the backend database to be reused")
	}
}

func TestAuditDatabase_ConnectFailure(t *testing.T) {
	cfg := &config.Config{Mongo: config.MongoConfig{URI: "not-a-uri", Database: "course_portal"}}

	_, _, err := AuditDatabase(context.Background(), cfg, &Backend{})
	if !errors.Is(err, domain.ErrConnectionFailure) {
		t.Fatalf("expected ErrConnectionFailure, got %v", err)
	}
}
