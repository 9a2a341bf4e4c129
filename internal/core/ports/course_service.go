package ports

import (
	"context"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// CreateCourseInput carries the data for a new course.
type CreateCourseInput struct {
	Title       string
	Description string
	Educator    string
	// IdempotencyKey is optional; a replayed key returns the earlier id.
	IdempotencyKey string
}

// CreateCourseResult is returned after a create.
type CreateCourseResult struct {
	ID             int64
	AlreadyExisted bool
}

// UpdateCourseInput carries a title change made by Actor.
type UpdateCourseInput struct {
	ID    int64
	Title string
	Actor string
}

// DeleteCourseInput carries a delete made by Actor.
type DeleteCourseInput struct {
	ID    int64
	Actor string
}

// CourseService defines the course use cases shared by the HTML and JSON
// surfaces.
type CourseService interface {
	List(ctx context.Context) ([]domain.Course, error)
	Create(ctx context.Context, in CreateCourseInput) (*CreateCourseResult, error)
	Update(ctx context.Context, in UpdateCourseInput) (int64, error)
	Delete(ctx context.Context, in DeleteCourseInput) (int64, error)
	Search(ctx context.Context, keyword string) ([]domain.Course, error)
}
