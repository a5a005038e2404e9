// Package hydrate resolves user references on tasks and comments into
// display summaries with one batched lookup per call.
package hydrate

import (
	"context"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory resolves user ids to summaries. Unknown ids are absent from the
// returned map.
type Directory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

type idSet struct {
	seen map[primitive.ObjectID]struct{}
	ids  []primitive.ObjectID
}

func (s *idSet) add(ids ...primitive.ObjectID) {
	if s.seen == nil {
		s.seen = map[primitive.ObjectID]struct{}{}
	}
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
}

func collectComment(s *idSet, c models.Comment) {
	s.add(c.UserID)
	s.add(c.Mentioned...)
}

// Tasks resolves creators, assignees, comment authors and mentions for every
// task in one query.
func Tasks(ctx context.Context, dir Directory, tasks []models.Task) ([]models.TaskView, error) {
	var set idSet
	for _, t := range tasks {
		set.add(t.CreatedBy)
		set.add(t.AssignedTo...)
		for _, c := range t.Comments {
			collectComment(&set, c)
		}
	}
	users, err := dir.Summaries(ctx, set.ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t, users))
	}
	return out, nil
}

// Task is Tasks for a single task.
func Task(ctx context.Context, dir Directory, t models.Task) (models.TaskView, error) {
	views, err := Tasks(ctx, dir, []models.Task{t})
	if err != nil {
		return models.TaskView{}, err
	}
	return views[0], nil
}

// Comments resolves authors and mentions.
func Comments(ctx context.Context, dir Directory, comments []models.Comment) ([]models.CommentView, error) {
	var set idSet
	for _, c := range comments {
		collectComment(&set, c)
	}
	users, err := dir.Summaries(ctx, set.ids)
	if err != nil {
		return nil, err
	}
	return commentViews(comments, users), nil
}

func taskView(t models.Task, users map[primitive.ObjectID]models.UserSummary) models.TaskView {
	return models.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Status:      t.Status,
		CreatedBy:   lookup(users, t.CreatedBy),
		AssignedTo:  summaries(users, t.AssignedTo),
		Comments:    commentViews(t.Comments, users),
		CreatedAt:   t.CreatedAt,
	}
}

func commentViews(comments []models.Comment, users map[primitive.ObjectID]models.UserSummary) []models.CommentView {
	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.CommentView{
			ID:        c.ID,
			User:      lookup(users, c.UserID),
			Text:      c.Text,
			Mentioned: summaries(users, c.Mentioned),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func lookup(users map[primitive.ObjectID]models.UserSummary, id primitive.ObjectID) *models.UserSummary {
	if u, ok := users[id]; ok {
		return &u
	}
	return nil
}

func summaries(users map[primitive.ObjectID]models.UserSummary, ids []primitive.ObjectID) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
