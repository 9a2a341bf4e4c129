package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/learnhub/course-portal/internal/core/domain"
)

const (
	collectionCourses  = "courses"
	collectionCounters = "counters"
	courseSequence     = "course_id"
)

// CourseRepository implements ports.CourseRepository on MongoDB. Integer ids
// come from an atomically incremented counter document so concurrent inserts
// never collide.
type CourseRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{
		col:      db.Collection(collectionCourses),
		counters: db.Collection(collectionCounters),
	}
}

// List returns all courses in id order.
func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.find(ctx, bson.M{})
}

// Create reserves the next id and inserts the course document.
func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return 0, err
	}

	doc := *c
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return 0, wrapErr("insert course", err)
	}
	c.ID = id
	return id, nil
}

func (r *CourseRepository) UpdateTitle(ctx context.Context, id int64, title, educator string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, courseFilter(id, educator), bson.M{"$set": bson.M{"title": title}})
	if err != nil {
		return 0, wrapErr("update course", err)
	}
	return res.MatchedCount, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64, educator string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, courseFilter(id, educator))
	if err != nil {
		return 0, wrapErr("delete course", err)
	}
	return res.DeletedCount, nil
}

// Search matches title substrings case-insensitively; keyword is quoted so
// regex metacharacters match literally.
func (r *CourseRepository) Search(ctx context.Context, keyword string) ([]domain.Course, error) {
	filter := bson.M{"title": bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}}
	return r.find(ctx, filter)
}

// EnsureIndexes creates necessary indexes on the courses collection.
func (r *CourseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "educator", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *CourseRepository) find(ctx context.Context, filter bson.M) ([]domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrapErr("find courses", err)
	}
	courses := []domain.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, wrapErr("decode courses", err)
	}
	return courses, nil
}

func (r *CourseRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": courseSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, wrapErr("next course id", err)
	}
	return counter.Seq, nil
}

func courseFilter(id int64, educator string) bson.M {
	filter := bson.M{"_id": id}
	if educator != "" {
		filter["educator"] = educator
	}
	return filter
}
