package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

func TestTaskCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewTaskStore(db)

	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	created, err := s.Create(&model.Task{
		HouseholdID:   h.ID,
		Title:         "Clean kitchen",
		Description:   "Counters and floor",
		Points:        10,
		Priority:      model.PriorityHigh,
		DueDate:       &due,
		RecurringType: model.RecurringNone,
		CreatedBy:     u.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Clean kitchen" {
		t.Errorf("Title = %q, want %q", got.Title, "Clean kitchen")
	}
	if got.Points != 10 {
		t.Errorf("Points = %d, want 10", got.Points)
	}
	if got.IsCompleted {
		t.Error("new task should not be completed")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
	if got.AssignedTo != nil {
		t.Errorf("AssignedTo = %v, want nil", got.AssignedTo)
	}
}

func TestTaskGetMissing(t *testing.T) {
	db := setupTestDB(t)
	s := NewTaskStore(db)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByID(999) = %v, want nil", got)
	}
}

func TestTaskListFilters(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	h := createTestHousehold(t, db, u.ID)
	s := NewTaskStore(db)

	mk := func(title string, assignedTo *int64) *model.Task {
		task, err := s.Create(&model.Task{
			HouseholdID:   h.ID,
			Title:         title,
			Priority:      model.PriorityMedium,
			AssignedTo:    assignedTo,
			RecurringType: model.RecurringNone,
			CreatedBy:     u.ID,
		})
		if err != nil {
			t.Fatalf("failed to create task %s: %v", title, err)
		}
		return task
	}

	t1 := mk("one", &u.ID)
	mk("two", &other.ID)
	mk("three", nil)

	now := time.Now().UTC()
	if err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return s.SetCompletionTx(tx, t1.ID, true, &now, &u.ID)
	}); err != nil {
		t.Fatalf("failed to complete task: %v", err)
	}

	all, err := s.List(h.ID, TaskFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d tasks, want 3", len(all))
	}

	completed := true
	done, err := s.List(h.ID, TaskFilter{Completed: &completed})
	if err != nil {
		t.Fatalf("List(completed) error = %v", err)
	}
	if len(done) != 1 || done[0].ID != t1.ID {
		t.Errorf("List(completed) = %v, want only task %d", done, t1.ID)
	}

	mine, err := s.List(h.ID, TaskFilter{AssignedTo: &u.ID})
	if err != nil {
		t.Fatalf("List(assigned) error = %v", err)
	}
	if len(mine) != 1 || mine[0].ID != t1.ID {
		t.Errorf("List(assigned) returned %d tasks, want 1", len(mine))
	}

	page, err := s.List(h.ID, TaskFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List(paged) error = %v", err)
	}
	if len(page) != 1 {
		t.Errorf("List(limit=2 offset=2) returned %d tasks, want 1", len(page))
	}
}

func TestTaskSetCompletionTx(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewTaskStore(db)

	task, err := s.Create(&model.Task{
		HouseholdID:   h.ID,
		Title:         "Vacuum",
		Priority:      model.PriorityLow,
		RecurringType: model.RecurringNone,
		CreatedBy:     u.ID,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return s.SetCompletionTx(tx, task.ID, true, &now, &u.ID)
	}); err != nil {
		t.Fatalf("SetCompletionTx() error = %v", err)
	}

	got, err := s.GetByID(task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.IsCompleted {
		t.Error("task not marked completed")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, now)
	}
	if got.AssignedTo == nil || *got.AssignedTo != u.ID {
		t.Errorf("AssignedTo = %v, want %d", got.AssignedTo, u.ID)
	}

	if err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return s.SetCompletionTx(tx, task.ID, false, nil, got.AssignedTo)
	}); err != nil {
		t.Fatalf("SetCompletionTx(revert) error = %v", err)
	}

	got, err = s.GetByID(task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.IsCompleted || got.CompletedAt != nil {
		t.Error("completion state not reverted")
	}
}

func TestTaskComments(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewTaskStore(db)

	task, err := s.Create(&model.Task{
		HouseholdID:   h.ID,
		Title:         "Mow lawn",
		Priority:      model.PriorityMedium,
		RecurringType: model.RecurringNone,
		CreatedBy:     u.ID,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if _, err := s.CreateComment(task.ID, u.ID, "front yard first"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, err := s.CreateComment(task.ID, u.ID, "back yard done"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := s.ListComments(task.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("ListComments() returned %d, want 2", len(comments))
	}
	if comments[0].Body != "front yard first" {
		t.Errorf("first comment = %q, want oldest first", comments[0].Body)
	}
}

func TestTaskDeleteCascadesComments(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewTaskStore(db)

	task, err := s.Create(&model.Task{
		HouseholdID:   h.ID,
		Title:         "Dishes",
		Priority:      model.PriorityMedium,
		RecurringType: model.RecurringNone,
		CreatedBy:     u.ID,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if _, err := s.CreateComment(task.ID, u.ID, "soak the pans"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if err := s.Delete(task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := s.GetByID(task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Error("task still present after delete")
	}

	comments, err := s.ListComments(task.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived task delete: %d remain", len(comments))
	}
}
