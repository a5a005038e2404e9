// Package notifications owns the per-user notification feed. Notify is the
// single producer entry point; List is the read path.
package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
}

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// List returns the actor's notifications, most recent first.
func (s *Service) List(ctx context.Context, actor taskpolicy.Actor) ([]models.Notification, error) {
	out, err := s.store.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load notifications", err)
	}
	return out, nil
}

// Notify records an unread message for userID.
func (s *Service) Notify(ctx context.Context, userID primitive.ObjectID, message string) error {
	message = strings.TrimSpace(message)
	if userID.IsZero() || message == "" {
		return apperr.Validation("notification needs a user and a message")
	}
	n, err := s.store.Create(ctx, models.Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return apperr.Internal("failed to create notification", err)
	}
	s.log.Debug("notification created",
		zap.String("notification_id", n.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	return nil
}
