package taskstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Task{
		Title:     "Write report",
		Deadline:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: creator,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.DefaultTaskStatus {
		t.Errorf("Status = %q, want %q", got.Status, models.DefaultTaskStatus)
	}
	if got.AssignedTo == nil || len(got.AssignedTo) != 0 {
		t.Errorf("AssignedTo = %v, want empty non-nil", got.AssignedTo)
	}
	if got.CreatedBy != creator {
		t.Errorf("CreatedBy = %s, want %s", got.CreatedBy.Hex(), creator.Hex())
	}
	if !got.Deadline.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Deadline = %v", got.Deadline)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_AddAssignees_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u1, u2 := primitive.NewObjectID(), primitive.NewObjectID()
	task := fixtures.CreateTask(ctx, "T", primitive.NewObjectID(), u1)

	after, added, err := store.AddAssignees(ctx, task.ID, []primitive.ObjectID{u1, u2, u2})
	if err != nil {
		t.Fatalf("AddAssignees failed: %v", err)
	}
	if len(added) != 1 || added[0] != u2 {
		t.Errorf("added = %v, want [%s]", added, u2.Hex())
	}
	if len(after.AssignedTo) != 2 {
		t.Errorf("returned AssignedTo = %v, want 2 entries", after.AssignedTo)
	}

	stored, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(stored.AssignedTo) != 2 || stored.AssignedTo[0] != u1 || stored.AssignedTo[1] != u2 {
		t.Errorf("stored AssignedTo = %v, want [u1 u2]", stored.AssignedTo)
	}

	_, added, err = store.AddAssignees(ctx, task.ID, []primitive.ObjectID{u2})
	if err != nil {
		t.Fatalf("second AddAssignees failed: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("re-adding should add nothing, got %v", added)
	}
}

func TestStore_AddAssignees_ConcurrentMerge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "T", primitive.NewObjectID())

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := store.AddAssignees(ctx, task.ID, []primitive.ObjectID{primitive.NewObjectID()}); err != nil {
				t.Errorf("AddAssignees: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(stored.AssignedTo) != n {
		t.Errorf("len(AssignedTo) = %d, want %d", len(stored.AssignedTo), n)
	}
}

func TestStore_AddAssignees_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _, err := store.AddAssignees(ctx, primitive.NewObjectID(), []primitive.ObjectID{primitive.NewObjectID()})
	if !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAssignedTo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	fixtures.CreateTask(ctx, "mine", admin, me)
	fixtures.CreateTask(ctx, "not mine", admin)

	mine, err := store.ListAssignedTo(ctx, me)
	if err != nil {
		t.Fatalf("ListAssignedTo failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "mine" {
		t.Errorf("ListAssignedTo = %+v, want only 'mine'", mine)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll len = %d, want 2", len(all))
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "T", primitive.NewObjectID())

	updated, err := store.SetStatus(ctx, task.ID, "anything goes")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if updated.Status != "anything goes" {
		t.Errorf("Status = %q", updated.Status)
	}

	if _, err := store.SetStatus(ctx, primitive.NewObjectID(), "x"); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_AppendComment_PreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "T", primitive.NewObjectID())
	author := primitive.NewObjectID()

	for _, text := range []string{"first", "second", "third"} {
		c := models.Comment{ID: primitive.NewObjectID(), UserID: author, Text: text, CreatedAt: time.Now().UTC()}
		if _, err := store.AppendComment(ctx, task.ID, c); err != nil {
			t.Fatalf("AppendComment(%q) failed: %v", text, err)
		}
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Comments) != 3 {
		t.Fatalf("len(Comments) = %d, want 3", len(got.Comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got.Comments[i].Text != want {
			t.Errorf("Comments[%d] = %q, want %q", i, got.Comments[i].Text, want)
		}
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "T", primitive.NewObjectID())

	if err := store.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, task.ID); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("GetByID after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, task.ID); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
