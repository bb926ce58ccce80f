// Package ledger is the single writer of a user's point balance and
// activity streak. Callers invoke Award inside their own transaction so the
// balance update commits atomically with the state change that earned it.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/apperr"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

type Ledger struct {
	users *store.UserStore
}

func New(users *store.UserStore) *Ledger {
	return &Ledger{users: users}
}

// Award applies a signed point delta to a user inside the caller's
// transaction and returns the user with updated balance, streak, and last
// activity. The balance never drops below zero; a caller that must reject an
// underflow (reward redemption) checks affordability before calling.
func (l *Ledger) Award(tx *sql.Tx, userID int64, delta int, now time.Time) (*model.User, error) {
	u, err := l.users.GetByIDTx(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}

	points := u.Points + delta
	if points < 0 {
		points = 0
	}
	streak := NextStreak(u.StreakDays, u.LastActivity, delta, now)

	if err := l.users.UpdatePointsTx(tx, userID, points, streak, now); err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}

	u.Points = points
	u.StreakDays = streak
	activity := now
	u.LastActivity = &activity
	return u, nil
}

// NextStreak computes the consecutive-day streak after an award at `now`.
// Only a positive delta can start, extend, or reset the streak; deductions
// leave it untouched. Calendar days are compared in UTC.
func NextStreak(current int, lastActivity *time.Time, delta int, now time.Time) int {
	if delta <= 0 {
		return current
	}

	today := calendarDay(now)
	if lastActivity == nil {
		return 1
	}

	switch calendarDay(*lastActivity) {
	case today:
		return current
	case today.AddDate(0, 0, -1):
		return current + 1
	default:
		return 1
	}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
