package journal

import (
	"log/slog"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

func setupJournalTest(t *testing.T) (*Journal, int64, int64) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	h, err := store.NewMembershipStore(db).CreateHousehold("Home", "CODE1")
	if err != nil {
		t.Fatalf("failed to create household: %v", err)
	}

	return New(store.NewActivityStore(db), slog.Default()), u.ID, h.ID
}

func TestRecordAndHistory(t *testing.T) {
	j, userID, householdID := setupJournalTest(t)

	j.Record(userID, householdID, model.ActivityTaskCompleted, 10, "task", 1)
	j.Record(userID, householdID, model.ActivityRewardRedeemed, -5, "reward", 2)

	history, err := j.History(householdID, 0, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History() returned %d entries, want 2", len(history))
	}

	// Newest first.
	if history[0].Type != model.ActivityRewardRedeemed || history[0].Points != -5 {
		t.Errorf("first entry = %q/%d, want reward_redeemed/-5", history[0].Type, history[0].Points)
	}
	if history[1].Points != 10 {
		t.Errorf("second entry points = %d, want 10", history[1].Points)
	}
}

func TestRecordSwallowsFailure(t *testing.T) {
	j, userID, _ := setupJournalTest(t)

	// Nonexistent household violates the foreign key; Record must not panic
	// or surface the error.
	j.Record(userID, 999, model.ActivityTaskCompleted, 10, "task", 1)

	history, err := j.History(999, 0, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("History() returned %d entries, want 0", len(history))
	}
}
