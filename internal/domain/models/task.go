// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTaskStatus is the status a task starts with. Status is otherwise an
// open string; no transition table is enforced.
const DefaultTaskStatus = "pending"

// Task is the aggregate root for a unit of work. Comments are embedded and
// persisted with the task; users are referenced by ID only.
//
// NOTE:
//   - AssignedTo is only ever grown with $addToSet so it never holds
//     duplicate IDs.
//   - Comments are only ever appended with $push, so slice order is
//     chronological order.
type Task struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description,omitempty"`
	Deadline    time.Time            `bson:"deadline"`
	Status      string               `bson:"status"`
	CreatedBy   primitive.ObjectID   `bson:"created_by"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to"`
	Comments    []Comment            `bson:"comments"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// IsAssigned reports whether userID is among the task's assignees.
func (t Task) IsAssigned(userID primitive.ObjectID) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
