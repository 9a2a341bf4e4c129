package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const collectionCourseEvents = "course_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionCourseEvents)}
}

// InsertEvent persists a course event to the course_events audit collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.CourseEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"course_id":    event.CourseID,
		"action":       string(event.Action),
		"actor":        event.Actor,
		"affected":     event.Affected,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Title != "" {
		doc["title"] = event.Title
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return wrapErr("insert course event", err)
	}
	return nil
}
