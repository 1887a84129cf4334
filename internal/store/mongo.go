package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"booktracker/internal/models"
)

var (
	// ErrNotFound reports a lookup for a book that does not exist.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidID reports an id that is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid book id")
)

// BookFilter narrows a listing; zero values mean no constraint.
// Title, Author, and Tag are case-insensitive substring matches,
// Status is an exact match.
type BookFilter struct {
	Title  string
	Author string
	Tag    string
	Status string
}

// BookPatch lists fields to change on an update; nil fields keep
// their current value.
type BookPatch struct {
	Title  *string
	Author *string
	Tags   *[]string
	Status *string
}

// MongoStore handles book document CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("books")}
}

// EnsureIndexes creates the owner index used by every book query.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_by", Value: 1}},
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	return book, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var b models.Book
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByOwner returns one page of the owner's books matching the filter,
// newest first, along with the total match count.
func (s *MongoStore) FindByOwner(ctx context.Context, owner string, f BookFilter, page, limit int) ([]models.Book, int64, error) {
	filter := buildBookFilter(owner, f)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, p BookPatch) (*models.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}

	res := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var b models.Book
	err = res.Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByOwnerGroupedByStatus returns the owner's book counts keyed by
// status. Statuses with no books are absent from the map.
func (s *MongoStore) CountByOwnerGroupedByStatus(ctx context.Context, owner string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "created_by", Value: owner}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// buildBookFilter translates a BookFilter into a Mongo query. Filter values
// are trimmed and matched literally, so regex metacharacters in user input
// carry no meaning.
func buildBookFilter(owner string, f BookFilter) bson.M {
	q := bson.M{"created_by": owner}
	if v := strings.TrimSpace(f.Title); v != "" {
		q["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
	}
	if v := strings.TrimSpace(f.Author); v != "" {
		q["author"] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
	}
	if v := strings.TrimSpace(f.Tag); v != "" {
		q["tags"] = bson.M{"$in": bson.A{primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}}}
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		q["status"] = v
	}
	return q
}
