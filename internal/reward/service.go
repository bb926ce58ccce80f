// Package reward owns the reward catalog and the atomic points-for-reward
// exchange.
package reward

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/hearth/internal/apperr"
	"github.com/dukerupert/hearth/internal/guard"
	"github.com/dukerupert/hearth/internal/journal"
	"github.com/dukerupert/hearth/internal/ledger"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/postcommit"
	"github.com/dukerupert/hearth/internal/realtime"
	"github.com/dukerupert/hearth/internal/store"
)

type Service struct {
	db      *sql.DB
	rewards *store.RewardStore
	users   *store.UserStore
	guard   *guard.Guard
	ledger  *ledger.Ledger
	journal *journal.Journal
	events  *realtime.Broadcaster
	hooks   *postcommit.Runner
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, rewards *store.RewardStore, users *store.UserStore, g *guard.Guard, l *ledger.Ledger, j *journal.Journal, events *realtime.Broadcaster, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		rewards: rewards,
		users:   users,
		guard:   g,
		ledger:  l,
		journal: j,
		events:  events,
		hooks:   postcommit.NewRunner(logger),
		logger:  logger,
		now:     time.Now,
	}
}

// Input carries the admin-settable reward fields. Quantity and MaxPerUser
// are nil when unbounded; negative values are clamped to zero.
type Input struct {
	HouseholdID       int64
	Title             string
	Description       string
	Cost              int
	QuantityAvailable *int
	MaxPerUser        *int
	ExpiresAt         *time.Time
	IsAvailable       bool
}

// RedemptionResult is what a successful exchange changed: the immutable
// redemption row, the reward's new counters, and the redeemer's new balance.
type RedemptionResult struct {
	Redemption *model.Redemption `json:"redemption"`
	Reward     *model.Reward     `json:"reward"`
	User       *model.User       `json:"user"`
}

func validate(in *Input) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("title is required")
	}
	if in.Cost <= 0 {
		return apperr.Validation("cost must be greater than zero")
	}
	if in.QuantityAvailable != nil && *in.QuantityAvailable < 0 {
		zero := 0
		in.QuantityAvailable = &zero
	}
	if in.MaxPerUser != nil && *in.MaxPerUser < 0 {
		zero := 0
		in.MaxPerUser = &zero
	}
	return nil
}

// ListAvailable returns a household's available rewards, cheapest first,
// newest first within a cost.
func (s *Service) ListAvailable(ctx context.Context, householdID, requesterID int64) ([]model.Reward, error) {
	if _, err := s.guard.ActiveMember(requesterID, householdID); err != nil {
		return nil, err
	}
	return s.rewards.ListAvailable(householdID)
}

// Redeem exchanges the requester's points for a reward. The affordability,
// quantity, and per-user-cap checks run in the same transaction as the
// deduction, counter increment, and redemption insert, so two concurrent
// redemptions of the last unit cannot both succeed.
func (s *Service) Redeem(ctx context.Context, rewardID, requesterID int64) (*RedemptionResult, error) {
	r, err := s.rewards.GetByID(rewardID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("reward")
	}

	if _, err := s.guard.ActiveMember(requesterID, r.HouseholdID); err != nil {
		return nil, err
	}

	var (
		result RedemptionResult
		now    = s.now()
	)
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r, err := s.rewards.GetByIDTx(tx, rewardID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFound("reward")
		}

		if !r.IsAvailable || r.Expired(now) || r.Remaining() == 0 {
			return apperr.Conflict(apperr.ReasonRewardUnavailable, "reward is unavailable")
		}

		if r.MaxPerUser != nil {
			prior, err := s.rewards.CountByUserTx(tx, rewardID, requesterID)
			if err != nil {
				return err
			}
			if prior >= *r.MaxPerUser {
				return apperr.Conflict(apperr.ReasonCannotRedeem, "redemption limit reached for this reward")
			}
		}

		u, err := s.users.GetByIDTx(tx, requesterID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("user")
		}
		if u.Points < r.Cost {
			return apperr.Conflict(apperr.ReasonCannotRedeem, "not enough points")
		}

		if u, err = s.ledger.Award(tx, requesterID, -r.Cost, now); err != nil {
			return err
		}
		if err := s.rewards.IncrementRedeemedTx(tx, rewardID); err != nil {
			return err
		}
		redemption, err := s.rewards.InsertRedemptionTx(tx, rewardID, requesterID, r.Cost, now)
		if err != nil {
			return err
		}

		r.TimesRedeemed++
		result = RedemptionResult{Redemption: redemption, Reward: r, User: u}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redeem reward: %w", err)
	}

	s.hooks.Run(
		postcommit.Hook{Name: "journal", Run: func() error {
			s.journal.Record(requesterID, result.Reward.HouseholdID, model.ActivityRewardRedeemed, -result.Redemption.PointsSpent, "reward", rewardID)
			return nil
		}},
		postcommit.Hook{Name: "broadcast", Run: func() error {
			s.events.Publish(ctx, realtime.NewEvent(result.Reward.HouseholdID, realtime.EventRewardRedeemed, map[string]any{
				"reward_id":     rewardID,
				"redemption_id": result.Redemption.ID,
				"redeemed_by":   requesterID,
				"points_spent":  result.Redemption.PointsSpent,
				"new_points":    result.User.Points,
				"redeemed_at":   result.Redemption.RedeemedAt,
			}))
			return nil
		}},
	)

	return &result, nil
}

// Create adds a reward to the catalog. Admin only.
func (s *Service) Create(ctx context.Context, in Input, requesterID int64) (*model.Reward, error) {
	if _, err := s.guard.Admin(requesterID, in.HouseholdID); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	r, err := s.rewards.Create(&model.Reward{
		HouseholdID:       in.HouseholdID,
		Title:             in.Title,
		Description:       in.Description,
		Cost:              in.Cost,
		QuantityAvailable: in.QuantityAvailable,
		MaxPerUser:        in.MaxPerUser,
		ExpiresAt:         in.ExpiresAt,
		IsAvailable:       in.IsAvailable,
		CreatedBy:         requesterID,
	})
	if err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	return r, nil
}

// Update edits a reward's cost, quantity, expiry, or availability. Admin only.
func (s *Service) Update(ctx context.Context, rewardID int64, in Input, requesterID int64) (*model.Reward, error) {
	r, err := s.rewards.GetByID(rewardID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("reward")
	}

	if _, err := s.guard.Admin(requesterID, r.HouseholdID); err != nil {
		return nil, err
	}

	in.HouseholdID = r.HouseholdID
	if err := validate(&in); err != nil {
		return nil, err
	}

	r.Title = in.Title
	r.Description = in.Description
	r.Cost = in.Cost
	r.QuantityAvailable = in.QuantityAvailable
	r.MaxPerUser = in.MaxPerUser
	r.ExpiresAt = in.ExpiresAt
	r.IsAvailable = in.IsAvailable

	updated, err := s.rewards.Update(r)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return updated, nil
}

// Delete removes a reward. Admin only. Redemption history is untouched.
func (s *Service) Delete(ctx context.Context, rewardID, requesterID int64) error {
	r, err := s.rewards.GetByID(rewardID)
	if err != nil {
		return err
	}
	if r == nil {
		return apperr.NotFound("reward")
	}

	if _, err := s.guard.Admin(requesterID, r.HouseholdID); err != nil {
		return err
	}

	if err := s.rewards.Delete(rewardID); err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// ListMyRedemptions returns the requester's redemption history, newest first.
func (s *Service) ListMyRedemptions(ctx context.Context, requesterID int64) ([]model.Redemption, error) {
	return s.rewards.ListRedemptionsByUser(requesterID)
}
