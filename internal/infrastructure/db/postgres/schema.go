package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Canonical schema. The course key is CourseID; deployments created with the
// earlier "id" column are renamed in place by renameLegacyID.
const createCourses = `
CREATE TABLE IF NOT EXISTS Courses (
	CourseID    SERIAL PRIMARY KEY,
	Title       TEXT NOT NULL,
	Description TEXT,
	Educator    TEXT NOT NULL
)`

const createUsers = `
CREATE TABLE IF NOT EXISTS Users (
	Username TEXT PRIMARY KEY,
	Password TEXT NOT NULL,
	UserRole TEXT NOT NULL CHECK (UserRole IN ('Educator', 'Learner'))
)`

const renameLegacyID = `
DO $$
BEGIN
	IF EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_name = 'courses' AND column_name = 'id'
	) AND NOT EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_name = 'courses' AND column_name = 'courseid'
	) THEN
		ALTER TABLE Courses RENAME COLUMN id TO CourseID;
	END IF;
END $$`

// Migrate brings the schema to the canonical layout. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{renameLegacyID, createCourses, createUsers} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
