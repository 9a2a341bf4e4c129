package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const (
	listCourses   = `SELECT CourseID, Title, COALESCE(Description, ''), Educator FROM Courses ORDER BY CourseID`
	insertCourse  = `INSERT INTO Courses (Title, Description, Educator) VALUES ($1, $2, $3) RETURNING CourseID`
	updateTitle   = `UPDATE Courses SET Title = $1 WHERE CourseID = $2`
	updateOwned   = `UPDATE Courses SET Title = $1 WHERE CourseID = $2 AND Educator = $3`
	deleteCourse  = `DELETE FROM Courses WHERE CourseID = $1`
	deleteOwned   = `DELETE FROM Courses WHERE CourseID = $1 AND Educator = $2`
	searchCourses = `SELECT CourseID, Title, COALESCE(Description, ''), Educator FROM Courses WHERE Title ILIKE '%' || $1::text || '%' ESCAPE '\' ORDER BY CourseID`
)

// CourseRepository implements ports.CourseRepository on Postgres.
type CourseRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool, timeout: defaultTimeout}
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.query(ctx, listCourses)
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) (int64, error) {
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var id int64
	if err := conn.QueryRow(ctx, insertCourse, c.Title, c.Description, c.Educator).Scan(&id); err != nil {
		return 0, classify(conn, "insert course", err)
	}
	c.ID = id
	return id, nil
}

func (r *CourseRepository) UpdateTitle(ctx context.Context, id int64, title, educator string) (int64, error) {
	if educator != "" {
		return r.exec(ctx, updateOwned, title, id, educator)
	}
	return r.exec(ctx, updateTitle, title, id)
}

func (r *CourseRepository) Delete(ctx context.Context, id int64, educator string) (int64, error) {
	if educator != "" {
		return r.exec(ctx, deleteOwned, id, educator)
	}
	return r.exec(ctx, deleteCourse, id)
}

// Search matches title substrings case-insensitively. LIKE metacharacters in
// keyword are escaped so they match literally.
func (r *CourseRepository) Search(ctx context.Context, keyword string) ([]domain.Course, error) {
	return r.query(ctx, searchCourses, escapeLike(keyword))
}

func (r *CourseRepository) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, classify(conn, "exec", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CourseRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Course, error) {
	ctx, cancel := withDeadline(ctx, r.timeout)
	defer cancel()

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(conn, "query courses", err)
	}
	courses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Course, error) {
		var c domain.Course
		err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Educator)
		return c, err
	})
	if err != nil {
		return nil, classify(conn, "scan courses", err)
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
