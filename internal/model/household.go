package model

import "time"

// Role values for a household membership.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Household struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// Membership ties a user to a household. At most one active membership
// exists per (user, household) pair.
type Membership struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	HouseholdID int64      `json:"household_id"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
}

func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
