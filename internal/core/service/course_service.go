package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/api/metrics"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

const (
	defaultClaimWait  = 5 * time.Second
	claimPollInterval = 20 * time.Millisecond
)

// CourseService implements ports.CourseService on top of a repository.
type CourseService struct {
	repo        ports.CourseRepository
	policy      domain.EditPolicy
	audit       ports.AuditPublisher
	idempotency ports.IdempotencyStore
	claimWait   time.Duration
	logger      zerolog.Logger
}

// CourseOption configures optional collaborators of CourseService.
type CourseOption func(*CourseService)

// WithAudit publishes an event for every successful mutation.
func WithAudit(p ports.AuditPublisher) CourseOption {
	return func(s *CourseService) { s.audit = p }
}

// WithIdempotency enables Idempotency-Key replay on Create.
func WithIdempotency(store ports.IdempotencyStore) CourseOption {
	return func(s *CourseService) { s.idempotency = store }
}

func NewCourseService(repo ports.CourseRepository, policy domain.EditPolicy, logger zerolog.Logger, opts ...CourseOption) *CourseService {
	if !policy.Valid() {
		policy = domain.PolicyAnyEducator
	}
	s := &CourseService{repo: repo, policy: policy, claimWait: defaultClaimWait, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CourseService) List(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		s.record("list", err)
		return nil, fmt.Errorf("list courses: %w", err)
	}
	s.record("list", nil)
	return courses, nil
}

// Create inserts a course owned by in.Educator. A replayed idempotency key
// returns the previously created id without inserting again; concurrent
// requests with the same key wait for the first one to finish.
func (s *CourseService) Create(ctx context.Context, in ports.CreateCourseInput) (*ports.CreateCourseResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		s.record("create", domain.ErrValidation)
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.Educator == "" {
		s.record("create", domain.ErrValidation)
		return nil, fmt.Errorf("%w: educator is required", domain.ErrValidation)
	}

	key := in.IdempotencyKey
	if s.idempotency == nil {
		key = ""
	}
	if key != "" {
		claimed, id, err := s.claim(ctx, key)
		switch {
		case err == nil && claimed:
		case err == nil:
			s.logger.Info().Str("idempotency_key", key).Int64("course_id", id).Msg("idempotent replay")
			metrics.CourseOperationsTotal.WithLabelValues("create", "replayed").Inc()
			return &ports.CreateCourseResult{ID: id, AlreadyExisted: true}, nil
		case errors.Is(err, domain.ErrIdempotencyInProgress), ctx.Err() != nil:
			s.record("create", err)
			return nil, err
		default:
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store unavailable, creating anyway")
			key = ""
		}
	}

	course := &domain.Course{
		Title:       title,
		Description: in.Description,
		Educator:    in.Educator,
	}
	id, err := s.repo.Create(ctx, course)
	if err != nil {
		s.record("create", err)
		s.logger.Error().Err(err).Str("educator", in.Educator).Msg("failed to create course")
		if key != "" {
			if rerr := s.idempotency.Release(ctx, key); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.record("create", nil)

	if key != "" {
		if err := s.idempotency.Remember(ctx, key, id); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
		}
	}

	s.publish(domain.CourseEvent{CourseID: id, Action: domain.ActionCreate, Actor: in.Educator, Title: title, Affected: 1})
	s.logger.Info().Int64("course_id", id).Str("educator", in.Educator).Msg("course created")

	return &ports.CreateCourseResult{ID: id}, nil
}

// claim polls the idempotency store until this call holds key or another
// call has resolved it to a course id.
func (s *CourseService) claim(ctx context.Context, key string) (bool, int64, error) {
	deadline := time.NewTimer(s.claimWait)
	defer deadline.Stop()
	ticker := time.NewTicker(claimPollInterval)
	defer ticker.Stop()

	for {
		claimed, id, err := s.idempotency.Reserve(ctx, key)
		if err != nil || claimed || id > 0 {
			return claimed, id, err
		}
		select {
		case <-ctx.Done():
			return false, 0, ctx.Err()
		case <-deadline.C:
			return false, 0, fmt.Errorf("%w: %q", domain.ErrIdempotencyInProgress, key)
		case <-ticker.C:
		}
	}
}

// Update changes the title of a course. An unknown id affects zero rows and
// is not an error.
func (s *CourseService) Update(ctx context.Context, in ports.UpdateCourseInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		s.record("update", domain.ErrValidation)
		return 0, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	owner, err := s.ownerFilter(in.Actor)
	if err != nil {
		s.record("update", err)
		return 0, err
	}

	n, err := s.repo.UpdateTitle(ctx, in.ID, title, owner)
	if err != nil {
		s.record("update", err)
		s.logger.Error().Err(err).Int64("course_id", in.ID).Msg("failed to update course")
		return 0, fmt.Errorf("update course %d: %w", in.ID, err)
	}
	s.record("update", nil)
	metrics.CourseRowsAffected.WithLabelValues("update").Observe(float64(n))

	if n > 0 {
		s.publish(domain.CourseEvent{CourseID: in.ID, Action: domain.ActionUpdate, Actor: in.Actor, Title: title, Affected: n})
	}
	s.logger.Info().Int64("course_id", in.ID).Int64("affected", n).Str("actor", in.Actor).Msg("course updated")
	return n, nil
}

// Delete removes a course. An unknown id affects zero rows and is not an
// error.
func (s *CourseService) Delete(ctx context.Context, in ports.DeleteCourseInput) (int64, error) {
	owner, err := s.ownerFilter(in.Actor)
	if err != nil {
		s.record("delete", err)
		return 0, err
	}

	n, err := s.repo.Delete(ctx, in.ID, owner)
	if err != nil {
		s.record("delete", err)
		s.logger.Error().Err(err).Int64("course_id", in.ID).Msg("failed to delete course")
		return 0, fmt.Errorf("delete course %d: %w", in.ID, err)
	}
	s.record("delete", nil)
	metrics.CourseRowsAffected.WithLabelValues("delete").Observe(float64(n))

	if n > 0 {
		s.publish(domain.CourseEvent{CourseID: in.ID, Action: domain.ActionDelete, Actor: in.Actor, Affected: n})
	}
	s.logger.Info().Int64("course_id", in.ID).Int64("affected", n).Str("actor", in.Actor).Msg("course deleted")
	return n, nil
}

// Search returns courses whose title contains keyword, ignoring case.
func (s *CourseService) Search(ctx context.Context, keyword string) ([]domain.Course, error) {
	courses, err := s.repo.Search(ctx, strings.TrimSpace(keyword))
	if err != nil {
		s.record("search", err)
		return nil, fmt.Errorf("search courses: %w", err)
	}
	s.record("search", nil)
	return courses, nil
}

// ownerFilter returns the educator a mutation must be scoped to, or "" when
// any educator may edit.
func (s *CourseService) ownerFilter(actor string) (string, error) {
	if s.policy != domain.PolicyOwnerOnly {
		return "", nil
	}
	if actor == "" {
		return "", fmt.Errorf("%w: owner_only policy needs an acting educator", domain.ErrForbidden)
	}
	return actor, nil
}

func (s *CourseService) publish(event domain.CourseEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	s.audit.Publish(event)
}

func (s *CourseService) record(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		result = "invalid"
	case errors.Is(err, domain.ErrConnectionFailure):
		result = "unavailable"
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.CourseOperationsTotal.WithLabelValues(operation, result).Inc()
}
