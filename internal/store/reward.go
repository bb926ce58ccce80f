package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

// --- Reward methods ---

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var available int
	var quantity, maxPerUser sql.NullInt64
	var expiresAt sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Title, &r.Description, &r.Cost,
		&quantity, &maxPerUser, &expiresAt, &r.TimesRedeemed, &available,
		&r.CreatedBy, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.IsAvailable = available != 0
	if quantity.Valid {
		n := int(quantity.Int64)
		r.QuantityAvailable = &n
	}
	if maxPerUser.Valid {
		n := int(maxPerUser.Int64)
		r.MaxPerUser = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		r.ExpiresAt = &t
	}
	return &r, nil
}

const rewardCols = `id, household_id, title, description, cost, quantity_available, max_per_user, expires_at, times_redeemed, is_available, created_by, created_at`

func (s *RewardStore) Create(r *model.Reward) (*model.Reward, error) {
	var available int
	if r.IsAvailable {
		available = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (household_id, title, description, cost, quantity_available, max_per_user, expires_at, is_available, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.HouseholdID, r.Title, r.Description, r.Cost,
		nullIntFromPtr(r.QuantityAvailable), nullIntFromPtr(r.MaxPerUser),
		nullTime(r.ExpiresAt), available, r.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

func (s *RewardStore) GetByIDTx(tx *sql.Tx, id int64) (*model.Reward, error) {
	row := tx.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListAvailable returns available rewards ordered by cost ascending, then
// newest first.
func (s *RewardStore) ListAvailable(householdID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE household_id = ? AND is_available = 1 ORDER BY cost ASC, created_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list available rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(r *model.Reward) (*model.Reward, error) {
	var available int
	if r.IsAvailable {
		available = 1
	}

	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, cost = ?, quantity_available = ?, max_per_user = ?, expires_at = ?, is_available = ? WHERE id = ?`,
		r.Title, r.Description, r.Cost,
		nullIntFromPtr(r.QuantityAvailable), nullIntFromPtr(r.MaxPerUser),
		nullTime(r.ExpiresAt), available, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RewardStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// IncrementRedeemedTx bumps times_redeemed inside the caller's transaction.
func (s *RewardStore) IncrementRedeemedTx(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(`UPDATE rewards SET times_redeemed = times_redeemed + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment times redeemed: %w", err)
	}
	return nil
}

// --- Redemption methods ---

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.Redemption, error) {
	var r model.Redemption
	err := scanner.Scan(&r.ID, &r.RewardID, &r.RedeemedBy, &r.PointsSpent, &r.RedeemedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const redemptionCols = `id, reward_id, redeemed_by, points_spent, redeemed_at`

// InsertRedemptionTx writes the redemption row inside the caller's transaction.
func (s *RewardStore) InsertRedemptionTx(tx *sql.Tx, rewardID, userID int64, pointsSpent int, redeemedAt time.Time) (*model.Redemption, error) {
	result, err := tx.Exec(
		`INSERT INTO redemptions (reward_id, redeemed_by, points_spent, redeemed_at) VALUES (?, ?, ?, ?)`,
		rewardID, userID, pointsSpent, redeemedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := tx.QueryRow(`SELECT `+redemptionCols+` FROM redemptions WHERE id = ?`, id)
	return scanRedemption(row)
}

// CountByUserTx counts a user's prior redemptions of one reward inside the
// caller's transaction, for the per-user cap check.
func (s *RewardStore) CountByUserTx(tx *sql.Tx, rewardID, userID int64) (int, error) {
	var n int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM redemptions WHERE reward_id = ? AND redeemed_by = ?`,
		rewardID, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count redemptions: %w", err)
	}
	return n, nil
}

func (s *RewardStore) ListRedemptionsByUser(userID int64) ([]model.Redemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM redemptions WHERE redeemed_by = ? ORDER BY redeemed_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.Redemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}

func nullIntFromPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
