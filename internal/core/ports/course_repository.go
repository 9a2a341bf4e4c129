package ports

import (
	"context"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// CourseRepository defines persistence operations for courses. Every method
// acquires its own connection, runs one statement and releases the
// connection before returning.
type CourseRepository interface {
	List(ctx context.Context) ([]domain.Course, error)
	Create(ctx context.Context, c *domain.Course) (int64, error)
	// UpdateTitle returns the number of rows changed. When educator is
	// non-empty only a course owned by that educator is touched.
	UpdateTitle(ctx context.Context, id int64, title, educator string) (int64, error)
	// Delete follows the same educator scoping as UpdateTitle.
	Delete(ctx context.Context, id int64, educator string) (int64, error)
	Search(ctx context.Context, keyword string) ([]domain.Course, error)
}

// AuditRepository persists course audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.CourseEvent) error
}

// AuditPublisher hands audit events to an asynchronous sink.
type AuditPublisher interface {
	Publish(event domain.CourseEvent)
}

// IdempotencyStore remembers which course a client-supplied key created.
// Reserve is atomic: for a given key at most one caller holds the claim.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already held, claimed is false
	// and courseID is the recorded course, or 0 while the holder is still
	// inserting.
	Reserve(ctx context.Context, key string) (claimed bool, courseID int64, err error)
	// Remember resolves a claimed key to the course it created.
	Remember(ctx context.Context, key string, courseID int64) error
	// Release drops a claim whose insert failed so the client can retry.
	Release(ctx context.Context, key string) error
}
