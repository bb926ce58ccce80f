package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	var entityType sql.NullString
	var entityID sql.NullInt64

	err := scanner.Scan(&a.ID, &a.UserID, &a.HouseholdID, &a.Type, &a.Points, &entityType, &entityID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if entityType.Valid {
		a.EntityType = &entityType.String
	}
	if entityID.Valid {
		a.EntityID = &entityID.Int64
	}
	return &a, nil
}

const activityCols = `id, user_id, household_id, type, points, entity_type, entity_id, created_at`

func (s *ActivityStore) Append(a *model.Activity) (*model.Activity, error) {
	var entityType sql.NullString
	if a.EntityType != nil {
		entityType = sql.NullString{String: *a.EntityType, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO activities (user_id, household_id, type, points, entity_type, entity_id) VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.HouseholdID, a.Type, a.Points, entityType, nullInt(a.EntityID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+activityCols+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

// ListByHousehold returns a household's activity history, newest first.
func (s *ActivityStore) ListByHousehold(householdID int64, limit, offset int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM activities WHERE household_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		householdID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
