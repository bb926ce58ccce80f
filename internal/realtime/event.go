package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Event names broadcast to household sessions.
const (
	EventTaskCreated    = "task_created"
	EventTaskUpdated    = "task_updated"
	EventTaskCompleted  = "task_completed"
	EventTaskDeleted    = "task_deleted"
	EventCommentAdded   = "comment_added"
	EventRewardRedeemed = "reward_redeemed"
)

// Event is one state-change notification. The same shape travels over every
// channel, and the uuid lets a client connected to both dedupe.
type Event struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	HouseholdID int64          `json:"household_id"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewEvent creates an Event for a household with a fresh id.
func NewEvent(householdID int64, name string, payload map[string]any) Event {
	return Event{
		ID:          uuid.NewString(),
		Name:        name,
		HouseholdID: householdID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
}
