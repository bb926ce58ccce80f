package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/reward"
)

type RewardHandler struct {
	svc *reward.Service
}

func NewRewardHandler(svc *reward.Service) *RewardHandler {
	return &RewardHandler{svc: svc}
}

type rewardRequest struct {
	HouseholdID       int64      `json:"household_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Cost              int        `json:"cost"`
	QuantityAvailable *int       `json:"quantity_available"`
	MaxPerUser        *int       `json:"max_per_user"`
	ExpiresAt         *time.Time `json:"expires_at"`
	IsAvailable       bool       `json:"is_available"`
}

func (req rewardRequest) input() reward.Input {
	return reward.Input{
		HouseholdID:       req.HouseholdID,
		Title:             req.Title,
		Description:       req.Description,
		Cost:              req.Cost,
		QuantityAvailable: req.QuantityAvailable,
		MaxPerUser:        req.MaxPerUser,
		ExpiresAt:         req.ExpiresAt,
		IsAvailable:       req.IsAvailable,
	}
}

// Create handles POST /api/rewards
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	created, err := h.svc.Create(r.Context(), req.input(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/households/{household_id}/rewards
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "household_id")
	if err != nil {
		invalidID(w, "household_id")
		return
	}

	rewards, err := h.svc.ListAvailable(r.Context(), householdID, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

// Update handles PUT /api/rewards/{id}
func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.input(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/rewards/{id}
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	if err := h.svc.Delete(r.Context(), id, auth.UserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Redeem handles POST /api/rewards/{id}/redeem
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	result, err := h.svc.Redeem(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListMyRedemptions handles GET /api/redemptions
func (h *RewardHandler) ListMyRedemptions(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.ListMyRedemptions(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []model.Redemption{}
	}
	writeJSON(w, http.StatusOK, history)
}
