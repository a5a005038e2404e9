// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an immutable entry in a task's comment thread.
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id"`
	UserID    primitive.ObjectID   `bson:"user_id"`
	Text      string               `bson:"text"`
	Mentioned []primitive.ObjectID `bson:"mentioned,omitempty"`
	CreatedAt time.Time            `bson:"created_at"`
}
