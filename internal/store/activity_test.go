package store

import (
	"testing"

	"github.com/dukerupert/hearth/internal/model"
)

func TestActivityAppendAndList(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewActivityStore(db)

	entityType := "task"
	entityID := int64(1)
	a, err := s.Append(&model.Activity{
		UserID:      u.ID,
		HouseholdID: h.ID,
		Type:        model.ActivityTaskCompleted,
		Points:      10,
		EntityType:  &entityType,
		EntityID:    &entityID,
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if a.Points != 10 {
		t.Errorf("Points = %d, want 10", a.Points)
	}
	if a.EntityType == nil || *a.EntityType != "task" {
		t.Errorf("EntityType = %v, want task", a.EntityType)
	}

	list, err := s.ListByHousehold(h.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListByHousehold() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListByHousehold() returned %d, want 1", len(list))
	}
}

func TestActivityListNewestFirstWithPaging(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	h := createTestHousehold(t, db, u.ID)
	s := NewActivityStore(db)

	for i := 0; i < 5; i++ {
		if _, err := s.Append(&model.Activity{
			UserID:      u.ID,
			HouseholdID: h.ID,
			Type:        model.ActivityTaskCompleted,
			Points:      i,
		}); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	list, err := s.ListByHousehold(h.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListByHousehold() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByHousehold(limit=2) returned %d, want 2", len(list))
	}
	if list[0].Points != 4 {
		t.Errorf("first entry Points = %d, want newest (4)", list[0].Points)
	}

	page2, err := s.ListByHousehold(h.ID, 2, 2)
	if err != nil {
		t.Fatalf("ListByHousehold(offset) error = %v", err)
	}
	if len(page2) != 2 || page2[0].Points != 2 || page2[1].Points != 1 {
		t.Errorf("second page = %v, want points 2 then 1", page2)
	}
}
