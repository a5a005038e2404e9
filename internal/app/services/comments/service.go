// Package comments owns the append-only comment thread embedded in each
// task, including mention resolution.
package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/services/hydrate"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the persistence the service needs.
type Store interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Task, error)
}

type Service struct {
	tasks  Store
	users  hydrate.Directory
	notify tasks.Notifier
	log    *zap.Logger
	now    func() time.Time
}

func New(store Store, users hydrate.Directory, notify tasks.Notifier, log *zap.Logger) *Service {
	return &Service{tasks: store, users: users, notify: notify, log: log, now: time.Now}
}

var errTaskNotFound = apperr.NotFound("Task not found")

func (s *Service) load(ctx context.Context, taskID string) (*models.Task, error) {
	id, err := tasks.ParseTaskID(taskID)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			return nil, errTaskNotFound
		}
		return nil, apperr.Internal("failed to load task", err)
	}
	return t, nil
}

// List returns the thread in chronological order. Only admins and the
// task's assignees may read it.
func (s *Service) List(ctx context.Context, actor taskpolicy.Actor, taskID string) ([]models.CommentView, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !taskpolicy.CanViewComments(actor, *t) {
		return nil, apperr.Forbidden("Access denied")
	}
	out, err := hydrate.Comments(ctx, s.users, t.Comments)
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return out, nil
}

// AddInput is the add-comment request body.
type AddInput struct {
	Text      string   `json:"comment" validate:"required,max=5000" label:"Comment"`
	Mentioned Mentions `json:"mentioned"`
}

// Add appends a comment by the actor. Any signed-in user may comment.
// Mentioned users other than the author are notified.
func (s *Service) Add(ctx context.Context, actor taskpolicy.Actor, taskID string, in AddInput) (models.CommentView, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return models.CommentView{}, err
	}
	if !taskpolicy.CanComment(actor, *t) {
		return models.CommentView{}, apperr.Forbidden("Access denied")
	}

	in.Text = normalize.Text(in.Text)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.CommentView{}, apperr.Validation(res.First())
	}
	mentioned, err := s.resolveMentions(ctx, in.Mentioned)
	if err != nil {
		return models.CommentView{}, err
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actor.ID,
		Text:      in.Text,
		Mentioned: mentioned,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.tasks.AppendComment(ctx, t.ID, c); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			// deleted between load and append
			return models.CommentView{}, errTaskNotFound
		}
		return models.CommentView{}, apperr.Internal("failed to add comment", err)
	}

	views, err := hydrate.Comments(ctx, s.users, []models.Comment{c})
	if err != nil {
		return models.CommentView{}, apperr.Internal("failed to load users", err)
	}
	v := views[0]
	s.notifyMentions(ctx, actor, v, t.Title)
	return v, nil
}

// resolveMentions parses, de-duplicates, and checks that every mentioned
// user exists.
func (s *Service) resolveMentions(ctx context.Context, raw Mentions) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			return nil, apperr.Validation("Mentioned user must be a valid ID.")
		}
		if !seen[oid] {
			seen[oid] = true
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, apperr.Validation("Mentioned user not found.")
		}
	}
	return ids, nil
}

func (s *Service) notifyMentions(ctx context.Context, actor taskpolicy.Actor, c models.CommentView, title string) {
	if s.notify == nil || len(c.Mentioned) == 0 {
		return
	}
	author := "Someone"
	if c.User != nil && c.User.Name != "" {
		author = c.User.Name
	}
	msg := fmt.Sprintf("%s mentioned you on %s", author, title)
	for _, u := range c.Mentioned {
		if u.ID == actor.ID {
			continue
		}
		if err := s.notify.Notify(ctx, u.ID, msg); err != nil {
			s.log.Warn("mention notification failed",
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err))
		}
	}
}
