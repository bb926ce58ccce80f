// Package journal appends point-bearing events to the household activity
// history. Writes are fire-and-forget: a failure is logged and swallowed so
// it never blocks or reverts the operation that triggered it.
package journal

import (
	"log/slog"

	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

type Journal struct {
	activities *store.ActivityStore
	logger     *slog.Logger
}

func New(activities *store.ActivityStore, logger *slog.Logger) *Journal {
	return &Journal{activities: activities, logger: logger}
}

// Record appends one activity row. Errors are logged, never returned.
func (j *Journal) Record(userID, householdID int64, activityType string, points int, entityType string, entityID int64) {
	_, err := j.activities.Append(&model.Activity{
		UserID:      userID,
		HouseholdID: householdID,
		Type:        activityType,
		Points:      points,
		EntityType:  &entityType,
		EntityID:    &entityID,
	})
	if err != nil {
		j.logger.Error("append activity", "type", activityType, "user_id", userID, "error", err)
	}
}

// History returns a household's activity log, newest first.
func (j *Journal) History(householdID int64, limit, offset int) ([]model.Activity, error) {
	return j.activities.ListByHousehold(householdID, limit, offset)
}
