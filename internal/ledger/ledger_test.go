package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

func setupLedgerTestDB(t *testing.T) (*sql.DB, *store.UserStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, store.NewUserStore(db)
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	if err := store.WithTx(context.Background(), db, fn); err != nil {
		t.Fatalf("tx failed: %v", err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		current      int
		lastActivity *time.Time
		delta        int
		want         int
	}{
		{"first ever activity", 0, nil, 10, 1},
		{"active yesterday extends", 3, timePtr(now.AddDate(0, 0, -1)), 10, 4},
		{"already active today unchanged", 3, timePtr(now.Add(-2 * time.Hour)), 10, 3},
		{"gap of two days resets", 7, timePtr(now.AddDate(0, 0, -2)), 10, 1},
		{"gap of a month resets", 30, timePtr(now.AddDate(0, -1, 0)), 10, 1},
		{"deduction leaves streak alone", 5, timePtr(now.AddDate(0, 0, -3)), -20, 5},
		{"zero delta leaves streak alone", 5, nil, 0, 5},
		{"yesterday by calendar not 24h", 2, timePtr(time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)), 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStreak(tt.current, tt.lastActivity, tt.delta, now)
			if got != tt.want {
				t.Errorf("NextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAwardAddsPoints(t *testing.T) {
	db, users := setupLedgerTestDB(t)
	l := New(users)

	u, err := users.Create("Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	var awarded *model.User
	inTx(t, db, func(tx *sql.Tx) error {
		awarded, err = l.Award(tx, u.ID, 25, now)
		return err
	})

	if awarded.Points != 25 {
		t.Errorf("Points = %d, want 25", awarded.Points)
	}
	if awarded.StreakDays != 1 {
		t.Errorf("StreakDays = %d, want 1", awarded.StreakDays)
	}

	persisted, err := users.GetByID(u.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if persisted.Points != 25 {
		t.Errorf("persisted Points = %d, want 25", persisted.Points)
	}
	if persisted.LastActivity == nil {
		t.Error("persisted LastActivity is nil")
	}
}

func TestAwardFloorsAtZero(t *testing.T) {
	db, users := setupLedgerTestDB(t)
	l := New(users)

	u, err := users.Create("Bob", "bob@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := time.Now().UTC()
	inTx(t, db, func(tx *sql.Tx) error {
		_, err := l.Award(tx, u.ID, 10, now)
		return err
	})

	var result *model.User
	inTx(t, db, func(tx *sql.Tx) error {
		result, err = l.Award(tx, u.ID, -50, now)
		return err
	})

	if result.Points != 0 {
		t.Errorf("Points = %d, want 0 after over-deduction", result.Points)
	}
}

func TestAwardDeductionKeepsStreak(t *testing.T) {
	db, users := setupLedgerTestDB(t)
	l := New(users)

	u, err := users.Create("Carol", "carol@example.com")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	day1 := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	inTx(t, db, func(tx *sql.Tx) error {
		_, err := l.Award(tx, u.ID, 10, day1)
		return err
	})
	inTx(t, db, func(tx *sql.Tx) error {
		_, err := l.Award(tx, u.ID, 10, day2)
		return err
	})

	var result *model.User
	inTx(t, db, func(tx *sql.Tx) error {
		result, err = l.Award(tx, u.ID, -5, day2)
		return err
	})

	if result.StreakDays != 2 {
		t.Errorf("StreakDays = %d, want 2 after deduction", result.StreakDays)
	}
	if result.Points != 15 {
		t.Errorf("Points = %d, want 15", result.Points)
	}
}
