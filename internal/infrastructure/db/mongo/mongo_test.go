package mongo

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// openTestDB connects to TEST_MONGO_URI and hands out a throwaway database
// that is dropped when the test ends. Tests are skipped when the variable is
// unset.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	name := "course_portal_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	client, db, err := Connect(context.Background(), Config{URI: uri, Database: name})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestCourseFilter(t *testing.T) {
	if f := courseFilter(3, ""); len(f) != 1 || f["_id"] != int64(3) {
		t.Fatalf("unscoped filter: %v", f)
	}
	if f := courseFilter(3, "alice"); len(f) != 2 || f["educator"] != "alice" {
		t.Fatalf("owner filter: %v", f)
	}
}

func TestConnect_InvalidURI(t *testing.T) {
	_, _, err := Connect(context.Background(), Config{URI: "not-a-uri", Database: "x", Timeout: time.Second})
	if !errors.Is(err, domain.ErrConnectionFailure) {
		t.Fatalf("expected ErrConnectionFailure, got %v", err)
	}
}

func TestCourseRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	empty, err := repo.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v err=%v", empty, err)
	}

	first, err := repo.Create(ctx, &domain.Course{Title: "Intro to Go", Educator: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repo.Create(ctx, &domain.Course{Title: "Advanced SQL", Description: "joins", Educator: "bob"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}

	hits, err := repo.Search(ctx, "INTRO")
	if err != nil || len(hits) != 1 || hits[0].ID != first {
		t.Fatalf("search intro: %v err=%v", hits, err)
	}
	hits, err = repo.Search(ctx, ".*")
	if err != nil || len(hits) != 0 {
		t.Fatalf("regex metacharacters must match literally, got %v err=%v", hits, err)
	}

	n, err := repo.UpdateTitle(ctx, first, "Intro to Go, 2nd ed.", "bob")
	if err != nil || n != 0 {
		t.Fatalf("non-owner update: n=%d err=%v", n, err)
	}
	n, err = repo.UpdateTitle(ctx, 999, "ghost", "")
	if err != nil || n != 0 {
		t.Fatalf("unknown id update: n=%d err=%v", n, err)
	}
	n, err = repo.UpdateTitle(ctx, first, "Intro to Go, 2nd ed.", "alice")
	if err != nil || n != 1 {
		t.Fatalf("owner update: n=%d err=%v", n, err)
	}

	n, err = repo.Delete(ctx, second, "")
	if err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	n, err = repo.Delete(ctx, second, "")
	if err != nil || n != 0 {
		t.Fatalf("second delete: n=%d err=%v", n, err)
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 1 || all[0].Title != "Intro to Go, 2nd ed." {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}
}

func TestCourseRepository_ParallelInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))

	const n = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Create(ctx, &domain.Course{Title: "Parallel", Educator: "alice"})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(ids))
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	user := &domain.User{Username: "alice", PasswordHash: "$2a$10$hash", Role: domain.RoleEducator}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, user); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PasswordHash != user.PasswordHash || got.Role != domain.RoleEducator {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := repo.FindByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewAuditRepository(db)

	event := &domain.CourseEvent{CourseID: 4, Action: domain.ActionUpdate, Actor: "alice", Title: "New", Affected: 1, OccurredAt: time.Now()}
	if err := repo.InsertEvent(ctx, event); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := db.Collection(collectionCourseEvents).CountDocuments(ctx, bson.M{"course_id": int64(4), "action": string(domain.ActionUpdate)})
	if err != nil || n != 1 {
		t.Fatalf("expected one stored event, got %d err=%v", n, err)
	}
}
