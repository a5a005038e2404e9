// internal/domain/models/views.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskView is a task with every user reference replaced by a summary.
// A creator that no longer exists is rendered as null; missing assignees
// are dropped.
type TaskView struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Deadline    time.Time          `json:"deadline"`
	Status      string             `json:"status"`
	CreatedBy   *UserSummary       `json:"createdBy"`
	AssignedTo  []UserSummary      `json:"assignedTo"`
	Comments    []CommentView      `json:"comments"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// CommentView is a comment with its author and mentions resolved.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      *UserSummary       `json:"user"`
	Text      string             `json:"text"`
	Mentioned []UserSummary      `json:"mentioned"`
	CreatedAt time.Time          `json:"createdAt"`
}
