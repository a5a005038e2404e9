// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no task matches the given id.
var ErrNotFound = errors.New("task not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

// Create inserts t with a fresh id, empty assignee and comment arrays, and
// server timestamps. An empty status becomes the default.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	t.ID = primitive.NewObjectID()
	if t.Status == "" {
		t.Status = models.DefaultTaskStatus
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []primitive.ObjectID{}
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task with its comments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListAll returns every task, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Task, error) {
	return s.find(ctx, bson.M{})
}

// ListAssignedTo returns tasks whose assignees include userID, newest first.
func (s *Store) ListAssignedTo(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return s.find(ctx, bson.M{"assigned_to": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAssignees unions userIDs into the assignee set with a single $addToSet,
// so concurrent calls merge instead of overwriting each other. It returns
// the task as it is after the update and the ids that were not already
// assigned, in request order.
func (s *Store) AddAssignees(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*models.Task, []primitive.ObjectID, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$addToSet": bson.M{"assigned_to": bson.M{"$each": userIDs}},
		"$set":      bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Task
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before); err != nil {
		return nil, nil, notFound(err)
	}

	// Replay $addToSet on the pre-image: same order, same duplicate rules.
	after := before
	after.AssignedTo = append([]primitive.ObjectID{}, before.AssignedTo...)
	after.UpdatedAt = now
	var added []primitive.ObjectID
	for _, uid := range userIDs {
		if after.IsAssigned(uid) {
			continue
		}
		after.AssignedTo = append(after.AssignedTo, uid)
		added = append(added, uid)
	}
	return &after, added, nil
}

// SetStatus overwrites the status unconditionally.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Task, error) {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	return s.findOneAndUpdate(ctx, id, update)
}

// AppendComment pushes c onto the task's comment sequence. $push keeps
// concurrent appends from losing each other.
func (s *Store) AppendComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Task, error) {
	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// Delete removes the task and its comments.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
