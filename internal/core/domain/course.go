package domain

import (
	"errors"
	"time"
)

var ErrValidation = errors.New("validation failed")
var ErrConnectionFailure = errors.New("database connection failed")

// ErrIdempotencyInProgress is returned when another request still holds the
// same Idempotency-Key and did not finish in time.
var ErrIdempotencyInProgress = errors.New("request with this idempotency key is in progress")

// Course is a single row of the Courses table.
type Course struct {
	ID          int64  `json:"id" bson:"_id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Educator    string `json:"educator" bson:"educator"`
}

// EditPolicy decides which educators may update or delete a course.
type EditPolicy string

const (
	// PolicyAnyEducator lets any authenticated educator modify any course.
	PolicyAnyEducator EditPolicy = "any_educator"
	// PolicyOwnerOnly restricts update and delete to the creating educator.
	PolicyOwnerOnly EditPolicy = "owner_only"
)

// Valid reports whether p is a known policy.
func (p EditPolicy) Valid() bool {
	return p == PolicyAnyEducator || p == PolicyOwnerOnly
}

// CourseAction names a mutation recorded in the audit trail.
type CourseAction string

const (
	ActionCreate CourseAction = "create"
	ActionUpdate CourseAction = "update"
	ActionDelete CourseAction = "delete"
)

// CourseEvent is an audit record of one course mutation.
type CourseEvent struct {
	CourseID   int64        `json:"course_id" bson:"course_id"`
	Action     CourseAction `json:"action" bson:"action"`
	Actor      string       `json:"actor" bson:"actor"`
	Title      string       `json:"title,omitempty" bson:"title,omitempty"`
	Affected   int64        `json:"affected" bson:"affected"`
	OccurredAt time.Time    `json:"occurred_at" bson:"occurred_at"`
}
