// Package memstore provides in-memory stand-ins for the Mongo stores so
// service and handler tests run without a database. Each type mirrors the
// observable behavior of its Mongo counterpart, including sentinel errors.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users is an in-memory user store.
type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
	Err  error // when set, every call fails with it
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]models.User{}}
}

func (s *Users) Create(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.User{}, s.Err
	}
	u.Email = normalize.Email(u.Email)
	for _, ex := range s.byID {
		if ex.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.byID[u.ID] = u
	return u, nil
}

// Put stores u as-is, assigning an ID if it has none.
func (s *Users) Put(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.NameCI = text.Fold(u.Name)
	s.byID[u.ID] = u
	return u
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return &u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	email = normalize.Email(email)
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (s *Users) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return out, nil
}

func (s *Users) ListDirectory(_ context.Context) ([]models.UserRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	all := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].NameCI != all[j].NameCI {
			return all[i].NameCI < all[j].NameCI
		}
		return all[i].ID.Hex() < all[j].ID.Hex()
	})
	out := make([]models.UserRef, 0, len(all))
	for _, u := range all {
		out = append(out, models.UserRef{ID: u.ID, Name: u.Name})
	}
	return out, nil
}

func (s *Users) SetRole(_ context.Context, id primitive.ObjectID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.Role = role
	s.byID[id] = u
	return nil
}

// Tasks is an in-memory task store.
type Tasks struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]models.Task
	order []primitive.ObjectID // insertion order
	Err   error
}

func NewTasks() *Tasks {
	return &Tasks{byID: map[primitive.ObjectID]models.Task{}}
}

func cloneTask(t models.Task) models.Task {
	t.AssignedTo = append([]primitive.ObjectID{}, t.AssignedTo...)
	t.Comments = append([]models.Comment{}, t.Comments...)
	return t
}

func (s *Tasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Task{}, s.Err
	}
	t.ID = primitive.NewObjectID()
	if t.Status == "" {
		t.Status = models.DefaultTaskStatus
	}
	t = cloneTask(t)
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	return cloneTask(t), nil
}

func (s *Tasks) GetByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.byID[id]
	if !ok {
		return nil, taskstore.ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *Tasks) list(keep func(models.Task) bool) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Task{}
	for i := len(s.order) - 1; i >= 0; i-- {
		t, ok := s.byID[s.order[i]]
		if ok && keep(t) {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (s *Tasks) ListAll(_ context.Context) ([]models.Task, error) {
	return s.list(func(models.Task) bool { return true })
}

func (s *Tasks) ListAssignedTo(_ context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return s.list(func(t models.Task) bool { return t.IsAssigned(userID) })
}

func (s *Tasks) AddAssignees(_ context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) (*models.Task, []primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, nil, s.Err
	}
	t, ok := s.byID[id]
	if !ok {
		return nil, nil, taskstore.ErrNotFound
	}
	t = cloneTask(t)
	var added []primitive.ObjectID
	for _, uid := range userIDs {
		if !t.IsAssigned(uid) {
			t.AssignedTo = append(t.AssignedTo, uid)
			added = append(added, uid)
		}
	}
	t.UpdatedAt = time.Now().UTC()
	s.byID[id] = t
	out := cloneTask(t)
	return &out, added, nil
}

func (s *Tasks) SetStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Task, error) {
	return s.mutate(id, func(t *models.Task) { t.Status = status })
}

func (s *Tasks) AppendComment(_ context.Context, id primitive.ObjectID, c models.Comment) (*models.Task, error) {
	return s.mutate(id, func(t *models.Task) { t.Comments = append(t.Comments, c) })
}

func (s *Tasks) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byID[id]; !ok {
		return taskstore.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Tasks) mutate(id primitive.ObjectID, fn func(*models.Task)) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.byID[id]
	if !ok {
		return nil, taskstore.ErrNotFound
	}
	t = cloneTask(t)
	fn(&t)
	t.UpdatedAt = time.Now().UTC()
	s.byID[id] = t
	out := cloneTask(t)
	return &out, nil
}

// Notifications is an in-memory notification store.
type Notifications struct {
	mu    sync.Mutex
	items []models.Notification
	Err   error
}

func NewNotifications() *Notifications { return &Notifications{} }

func (s *Notifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Notification{}, s.Err
	}
	n.ID = primitive.NewObjectID()
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, n)
	return n, nil
}

func (s *Notifications) ListForUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Notification{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].UserID == userID {
			out = append(out, s.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns every stored notification in insertion order.
func (s *Notifications) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.items...)
}
