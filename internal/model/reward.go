package model

import "time"

// Reward is something a household member can spend points on.
// QuantityAvailable and MaxPerUser are nil when unbounded.
type Reward struct {
	ID                int64      `json:"id"`
	HouseholdID       int64      `json:"household_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Cost              int        `json:"cost"`
	QuantityAvailable *int       `json:"quantity_available"`
	MaxPerUser        *int       `json:"max_per_user"`
	ExpiresAt         *time.Time `json:"expires_at"`
	TimesRedeemed     int        `json:"times_redeemed"`
	IsAvailable       bool       `json:"is_available"`
	CreatedBy         int64      `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Remaining returns the number of redemptions left, or -1 when unbounded.
func (r *Reward) Remaining() int {
	if r.QuantityAvailable == nil {
		return -1
	}
	n := *r.QuantityAvailable - r.TimesRedeemed
	if n < 0 {
		return 0
	}
	return n
}

// Expired reports whether the reward's expiry has passed as of now.
func (r *Reward) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// Redemption records one successful points-for-reward exchange. Rows are
// immutable once written.
type Redemption struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	RedeemedBy  int64     `json:"redeemed_by"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}
