// Package guard confirms a caller's standing in a household before any
// mutation proceeds. Every service calls it first.
package guard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/apperr"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

type Guard struct {
	db          *sql.DB
	memberships *store.MembershipStore
}

func New(db *sql.DB, memberships *store.MembershipStore) *Guard {
	return &Guard{db: db, memberships: memberships}
}

// ActiveMember returns the caller's active membership in the household, or
// AccessDenied if there is none.
func (g *Guard) ActiveMember(userID, householdID int64) (*model.Membership, error) {
	m, err := g.memberships.GetActive(userID, householdID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if m == nil {
		return nil, apperr.AccessDenied("not an active member of this household")
	}
	return m, nil
}

// Admin returns the caller's active membership if it carries the admin role.
func (g *Guard) Admin(userID, householdID int64) (*model.Membership, error) {
	m, err := g.ActiveMember(userID, householdID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, apperr.AccessDenied("admin role required")
	}
	return m, nil
}

// Leave deactivates the caller's membership. The sole active admin of a
// household cannot leave; the admin-count check and the deactivation run in
// one transaction so two admins leaving at once cannot both slip through.
func (g *Guard) Leave(ctx context.Context, userID, householdID int64) error {
	err := store.WithTx(ctx, g.db, func(tx *sql.Tx) error {
		m, err := g.memberships.GetActiveTx(tx, userID, householdID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if m == nil {
			return apperr.AccessDenied("not an active member of this household")
		}

		if m.IsAdmin() {
			admins, err := g.memberships.CountActiveAdminsTx(tx, householdID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Conflict(apperr.ReasonLastAdmin, "the last admin cannot leave the household")
			}
		}

		return g.memberships.DeactivateTx(tx, m.ID, time.Now().UTC())
	})
	if err != nil {
		return fmt.Errorf("leave household: %w", err)
	}
	return nil
}
