package store

import "testing"

func TestPushSubscriptionUpsert(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	s := NewPushStore(db)

	first, err := s.Create(u.ID, "https://push.example/abc", "p256dh-1", "auth-1", "phone")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Re-subscribing the same endpoint replaces keys instead of duplicating.
	second, err := s.Create(u.ID, "https://push.example/abc", "p256dh-2", "auth-2", "phone")
	if err != nil {
		t.Fatalf("Create(resubscribe) error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resubscribe created new row %d, want existing %d", second.ID, first.ID)
	}
	if second.P256dhKey != "p256dh-2" {
		t.Errorf("P256dhKey = %q, want replaced key", second.P256dhKey)
	}

	subs, err := s.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("ListByUser() returned %d, want 1", len(subs))
	}
}

func TestPushSubscriptionDelete(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	s := NewPushStore(db)

	sub, err := s.Create(u.ID, "https://push.example/abc", "p", "a", "laptop")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another user cannot delete a subscription they do not own.
	if err := s.Delete(sub.ID, other.ID); err != nil {
		t.Fatalf("Delete(wrong owner) error = %v", err)
	}
	subs, err := s.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(subs) != 1 {
		t.Fatal("subscription deleted by non-owner")
	}

	if err := s.Delete(sub.ID, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	subs, err = s.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("ListByUser() returned %d after delete, want 0", len(subs))
	}
}

func TestPushSubscriptionDeleteByEndpoint(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "alice")
	s := NewPushStore(db)

	if _, err := s.Create(u.ID, "https://push.example/gone", "p", "a", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("DeleteByEndpoint() error = %v", err)
	}

	subs, err := s.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("subscription survived DeleteByEndpoint: %d remain", len(subs))
	}
}
