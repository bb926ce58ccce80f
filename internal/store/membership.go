package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

type MembershipStore struct {
	db *sql.DB
}

func NewMembershipStore(db *sql.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

// --- Household methods ---

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.InviteCode, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, invite_code, created_at`

func (s *MembershipStore) CreateHousehold(name, inviteCode string) (*model.Household, error) {
	result, err := s.db.Exec(
		`INSERT INTO households (name, invite_code) VALUES (?, ?)`,
		name, inviteCode,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetHouseholdByID(id)
}

func (s *MembershipStore) GetHouseholdByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

// --- Membership methods ---

func scanMembership(scanner interface{ Scan(...any) error }) (*model.Membership, error) {
	var m model.Membership
	var active int
	var leftAt sql.NullTime

	err := scanner.Scan(&m.ID, &m.UserID, &m.HouseholdID, &m.Role, &active, &m.JoinedAt, &leftAt)
	if err != nil {
		return nil, err
	}

	m.IsActive = active != 0
	if leftAt.Valid {
		t := leftAt.Time
		m.LeftAt = &t
	}
	return &m, nil
}

const membershipCols = `id, user_id, household_id, role, is_active, joined_at, left_at`

func (s *MembershipStore) AddMember(userID, householdID int64, role string) (*model.Membership, error) {
	result, err := s.db.Exec(
		`INSERT INTO memberships (user_id, household_id, role) VALUES (?, ?, ?)`,
		userID, householdID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+membershipCols+` FROM memberships WHERE id = ?`, id)
	return scanMembership(row)
}

// GetActive returns the active membership for (user, household), or nil.
func (s *MembershipStore) GetActive(userID, householdID int64) (*model.Membership, error) {
	row := s.db.QueryRow(
		`SELECT `+membershipCols+` FROM memberships WHERE user_id = ? AND household_id = ? AND is_active = 1`,
		userID, householdID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active membership: %w", err)
	}
	return m, nil
}

func (s *MembershipStore) GetActiveTx(tx *sql.Tx, userID, householdID int64) (*model.Membership, error) {
	row := tx.QueryRow(
		`SELECT `+membershipCols+` FROM memberships WHERE user_id = ? AND household_id = ? AND is_active = 1`,
		userID, householdID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active membership: %w", err)
	}
	return m, nil
}

// ListActiveUserIDs returns the user ids of every active member of a household.
func (s *MembershipStore) ListActiveUserIDs(householdID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT user_id FROM memberships WHERE household_id = ? AND is_active = 1`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountActiveAdminsTx counts active admin memberships inside the caller's
// transaction, so the last-admin check cannot race a concurrent leave.
func (s *MembershipStore) CountActiveAdminsTx(tx *sql.Tx, householdID int64) (int, error) {
	var n int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM memberships WHERE household_id = ? AND role = 'admin' AND is_active = 1`,
		householdID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active admins: %w", err)
	}
	return n, nil
}

// DeactivateTx marks a membership inactive inside the caller's transaction.
func (s *MembershipStore) DeactivateTx(tx *sql.Tx, membershipID int64, leftAt time.Time) error {
	_, err := tx.Exec(
		`UPDATE memberships SET is_active = 0, left_at = ? WHERE id = ?`,
		leftAt.UTC(), membershipID,
	)
	if err != nil {
		return fmt.Errorf("deactivate membership: %w", err)
	}
	return nil
}
