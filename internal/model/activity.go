package model

import "time"

// Activity types recorded by the journal.
const (
	ActivityTaskCompleted   = "task_completed"
	ActivityTaskUncompleted = "task_uncompleted"
	ActivityRewardRedeemed  = "reward_redeemed"
)

// Activity is an append-only record of a point-bearing event. Points carries
// the signed delta applied to the user's balance.
type Activity struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	HouseholdID int64     `json:"household_id"`
	Type        string    `json:"type"`
	Points      int       `json:"points"`
	EntityType  *string   `json:"entity_type,omitempty"`
	EntityID    *int64    `json:"entity_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
