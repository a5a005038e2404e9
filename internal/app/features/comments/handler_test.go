package comments_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/comments"
	commentsvc "github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCommentThread(t *testing.T) {
	users := memstore.NewUsers()
	taskMem := memstore.NewTasks()
	admin := users.Put(models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin})
	uma := users.Put(models.User{Name: "Uma", Email: "uma@example.com", Role: models.RoleUser})
	sam := users.Put(models.User{Name: "Sam", Email: "sam@example.com", Role: models.RoleUser})

	task, err := taskMem.Create(context.Background(), models.Task{
		Title:      "T",
		CreatedBy:  admin.ID,
		AssignedTo: []primitive.ObjectID{uma.ID},
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	id := task.ID.Hex()

	h := comments.NewHandler(commentsvc.New(taskMem, users, nil, zap.NewNop()), zap.NewNop())
	asUma := testutil.TestUser{ID: uma.ID.Hex(), Role: "user"}
	asSam := testutil.TestUser{ID: sam.ID.Hex(), Role: "user"}

	post := func(u testutil.TestUser, body any) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(t, http.MethodPost, "/api/tasks/"+id+"/comments", body, u)
		h.HandleAdd(rec, testutil.WithChiURLParam(req, "taskId", id))
		return rec
	}
	list := func(u testutil.TestUser) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(t, http.MethodGet, "/api/tasks/"+id+"/comments", nil, u)
		h.ServeList(rec, testutil.WithChiURLParam(req, "taskId", id))
		return rec
	}

	rec := post(asUma, map[string]any{"comment": "done", "mentioned": sam.ID.Hex()})
	rec.AssertStatus(t, http.StatusCreated)
	var created struct {
		User      models.UserSummary   `json:"user"`
		Text      string               `json:"text"`
		Mentioned []models.UserSummary `json:"mentioned"`
	}
	rec.DecodeJSON(t, &created)
	if created.User.Name != "Uma" || created.Text != "done" || len(created.Mentioned) != 1 || created.Mentioned[0].Name != "Sam" {
		t.Errorf("created = %+v", created)
	}

	// sam is not assigned: can post, cannot read
	post(asSam, map[string]any{"comment": "hello", "mentioned": nil}).AssertStatus(t, http.StatusCreated)
	list(asSam).AssertStatus(t, http.StatusForbidden)

	rec = list(asUma)
	rec.AssertStatus(t, http.StatusOK)
	var thread []struct {
		Text string `json:"text"`
	}
	rec.DecodeJSON(t, &thread)
	if len(thread) != 2 || thread[0].Text != "done" || thread[1].Text != "hello" {
		t.Errorf("thread = %+v", thread)
	}

	post(asUma, map[string]any{"comment": ""}).AssertStatus(t, http.StatusBadRequest)
}

func TestCommentThread_UnknownTask(t *testing.T) {
	h := comments.NewHandler(commentsvc.New(memstore.NewTasks(), memstore.NewUsers(), nil, zap.NewNop()), zap.NewNop())
	id := primitive.NewObjectID().Hex()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodGet, "/api/tasks/"+id+"/comments", nil, testutil.AdminUser())
	h.ServeList(rec, testutil.WithChiURLParam(req, "taskId", id))
	rec.AssertStatus(t, http.StatusNotFound)
}
