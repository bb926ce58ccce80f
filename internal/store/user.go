package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var lastActivity sql.NullTime

	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Points, &u.StreakDays, &lastActivity, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		t := lastActivity.Time
		u.LastActivity = &t
	}
	return &u, nil
}

const userCols = `id, name, email, points, streak_days, last_activity, created_at`

func (s *UserStore) Create(name, email string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email) VALUES (?, ?)`,
		name, email,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByIDTx reads a user inside the caller's transaction. The ledger uses
// this so its read-check-write on points and streak stays atomic.
func (s *UserStore) GetByIDTx(tx *sql.Tx, id int64) (*model.User, error) {
	row := tx.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdatePointsTx writes the user's balance, streak, and last activity inside
// the caller's transaction.
func (s *UserStore) UpdatePointsTx(tx *sql.Tx, id int64, points, streakDays int, lastActivity time.Time) error {
	_, err := tx.Exec(
		`UPDATE users SET points = ?, streak_days = ?, last_activity = ? WHERE id = ?`,
		points, streakDays, lastActivity.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update user points: %w", err)
	}
	return nil
}
