// Package tasks owns the task lifecycle: create, assign, status update,
// delete, and the admin and assignee listings.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/services/hydrate"
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
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	ListAssignedTo(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	AddAssignees(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*models.Task, []primitive.ObjectID, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Notifier delivers a message to a user's feed.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, message string) error
}

// Options tunes optional behavior.
type Options struct {
	// NotifyOnAssign sends "You were assigned to <title>" to each newly
	// added assignee.
	NotifyOnAssign bool
}

type Service struct {
	tasks  Store
	users  hydrate.Directory
	notify Notifier
	opts   Options
	log    *zap.Logger
}

func New(tasks Store, users hydrate.Directory, notify Notifier, opts Options, log *zap.Logger) *Service {
	return &Service{tasks: tasks, users: users, notify: notify, opts: opts, log: log}
}

var (
	errForbidden    = apperr.Forbidden("forbidden")
	errTaskNotFound = apperr.NotFound("Task not found")
)

// ParseTaskID turns a path parameter into an id. A malformed id can never
// match a task, so it reports not found.
func ParseTaskID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, errTaskNotFound
	}
	return id, nil
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, taskstore.ErrNotFound) {
		return errTaskNotFound
	}
	return apperr.Internal(fmt.Sprintf("failed to %s", op), err)
}

func (s *Service) view(ctx context.Context, t models.Task) (models.TaskView, error) {
	v, err := hydrate.Task(ctx, s.users, t)
	if err != nil {
		return models.TaskView{}, apperr.Internal("failed to load users", err)
	}
	return v, nil
}

func (s *Service) views(ctx context.Context, ts []models.Task) ([]models.TaskView, error) {
	v, err := hydrate.Tasks(ctx, s.users, ts)
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return v, nil
}

// ListAll returns every task. Admin only.
func (s *Service) ListAll(ctx context.Context, actor taskpolicy.Actor) ([]models.TaskView, error) {
	if !taskpolicy.CanManageTasks(actor) {
		return nil, errForbidden
	}
	ts, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, s.storeErr("list tasks", err)
	}
	return s.views(ctx, ts)
}

// ListMine returns the tasks the actor is assigned to.
func (s *Service) ListMine(ctx context.Context, actor taskpolicy.Actor) ([]models.TaskView, error) {
	ts, err := s.tasks.ListAssignedTo(ctx, actor.ID)
	if err != nil {
		return nil, s.storeErr("list tasks", err)
	}
	return s.views(ctx, ts)
}

// CreateInput is the create-task request body.
type CreateInput struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"max=5000" label:"Description"`
	Deadline    string `json:"deadline" validate:"required,date" label:"Deadline"`
}

// Create adds a task owned by the actor with no assignees. Admin only. Past
// deadlines are accepted.
func (s *Service) Create(ctx context.Context, actor taskpolicy.Actor, in CreateInput) (models.TaskView, error) {
	if !taskpolicy.CanManageTasks(actor) {
		return models.TaskView{}, errForbidden
	}
	in.Title = normalize.Text(in.Title)
	in.Description = normalize.Text(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.TaskView{}, apperr.Validation(res.First())
	}
	deadline, _ := inputval.ParseDate(in.Deadline)

	t, err := s.tasks.Create(ctx, models.Task{
		Title:       in.Title,
		Description: in.Description,
		Deadline:    deadline,
		Status:      models.DefaultTaskStatus,
		CreatedBy:   actor.ID,
		AssignedTo:  []primitive.ObjectID{},
		Comments:    []models.Comment{},
	})
	if err != nil {
		return models.TaskView{}, s.storeErr("create task", err)
	}
	s.log.Info("task created", zap.String("task_id", t.ID.Hex()), zap.String("by", actor.ID.Hex()))
	return s.view(ctx, t)
}

// AssignInput is the assign request body.
type AssignInput struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,objectid" label:"userIds"`
}

// Assign unions the given users into the task's assignees; users already
// assigned are skipped. Admin only.
func (s *Service) Assign(ctx context.Context, actor taskpolicy.Actor, taskID string, in AssignInput) (models.TaskView, error) {
	if !taskpolicy.CanManageTasks(actor) {
		return models.TaskView{}, errForbidden
	}
	id, err := ParseTaskID(taskID)
	if err != nil {
		return models.TaskView{}, err
	}
	if res := inputval.Validate(in); res.HasErrors() {
		return models.TaskView{}, apperr.Validation(res.First())
	}
	userIDs := make([]primitive.ObjectID, 0, len(in.UserIDs))
	for _, raw := range in.UserIDs {
		oid, _ := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		userIDs = append(userIDs, oid)
	}

	t, added, err := s.tasks.AddAssignees(ctx, id, userIDs)
	if err != nil {
		return models.TaskView{}, s.storeErr("assign users", err)
	}
	if s.opts.NotifyOnAssign {
		for _, uid := range added {
			s.deliver(ctx, uid, fmt.Sprintf("You were assigned to %s", t.Title))
		}
	}
	return s.view(ctx, *t)
}

// UpdateStatus overwrites the task's status. Any signed-in user may do this;
// the value is an open string.
func (s *Service) UpdateStatus(ctx context.Context, actor taskpolicy.Actor, taskID, status string) (models.TaskView, error) {
	if !taskpolicy.CanUpdateStatus(actor) {
		return models.TaskView{}, errForbidden
	}
	id, err := ParseTaskID(taskID)
	if err != nil {
		return models.TaskView{}, err
	}
	status = normalize.Status(status)
	if status == "" {
		return models.TaskView{}, apperr.Validation("Status is required.")
	}
	t, err := s.tasks.SetStatus(ctx, id, status)
	if err != nil {
		return models.TaskView{}, s.storeErr("update task", err)
	}
	s.log.Debug("task status changed",
		zap.String("task_id", id.Hex()),
		zap.String("status", status),
		zap.String("by", actor.ID.Hex()))
	return s.view(ctx, *t)
}

// Delete removes the task and its comments. Admin only.
func (s *Service) Delete(ctx context.Context, actor taskpolicy.Actor, taskID string) error {
	if !taskpolicy.CanManageTasks(actor) {
		return errForbidden
	}
	id, err := ParseTaskID(taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.storeErr("delete task", err)
	}
	s.log.Info("task deleted", zap.String("task_id", id.Hex()), zap.String("by", actor.ID.Hex()))
	return nil
}

func (s *Service) deliver(ctx context.Context, userID primitive.ObjectID, msg string) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(ctx, userID, msg); err != nil {
		s.log.Warn("notification failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}
