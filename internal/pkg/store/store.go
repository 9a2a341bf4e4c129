// Package store opens the course and user repositories for the configured
// STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/learnhub/course-portal/internal/core/ports"
	"github.com/learnhub/course-portal/internal/infrastructure/db/mongo"
	"github.com/learnhub/course-portal/internal/infrastructure/db/postgres"
	"github.com/learnhub/course-portal/internal/pkg/config"
)

// Pinger is satisfied by every backend's readiness adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend bundles the repositories of one store driver.
type Backend struct {
	Courses ports.CourseRepository
	Users   ports.UserRepository
	Pinger  Pinger

	// Mongo is set when the mongo driver backs the repositories.
	Mongo *mongodriver.Database

	close func()
}

// Close releases the underlying pool or client.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the configured store. For postgres the schema migration
// runs first when SQL_AUTO_MIGRATE is set.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{ConnectionString: cfg.Store.ConnectionString})
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("postgres schema up to date")
		}
		return &Backend{
			Courses: postgres.NewCourseRepository(pool),
			Users:   postgres.NewUserRepository(pool),
			Pinger:  postgres.Pinger{Pool: pool},
			close:   pool.Close,
		}, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		courses := mongo.NewCourseRepository(db)
		if err := courses.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure course indexes")
		}
		return &Backend{
			Courses: courses,
			Users:   mongo.NewUserRepository(db),
			Pinger:  mongo.Pinger{DB: db},
			Mongo:   db,
			close:   func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// AuditDatabase returns the database for the course audit trail. The
// backend's own client is reused when mongo already stores the courses;
// otherwise a second client is opened and must be released with the
// returned func.
func AuditDatabase(ctx context.Context, cfg *config.Config, b *Backend) (*mongodriver.Database, func(), error) {
	if b != nil && b.Mongo != nil {
		return b.Mongo, func() {}, nil
	}
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = client.Disconnect(context.Background()) }, nil
}
