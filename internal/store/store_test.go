package store

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, db *sql.DB, name string) *model.User {
	t.Helper()

	u, err := NewUserStore(db).Create(name, fmt.Sprintf("%s@example.com", name))
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func createTestHousehold(t *testing.T, db *sql.DB, adminID int64) *model.Household {
	t.Helper()

	s := NewMembershipStore(db)
	h, err := s.CreateHousehold("Test Household", "INVITE1")
	if err != nil {
		t.Fatalf("failed to create household: %v", err)
	}
	if _, err := s.AddMember(adminID, h.ID, model.RoleAdmin); err != nil {
		t.Fatalf("failed to add admin: %v", err)
	}
	return h
}
