package handler

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/guard"
	"github.com/dukerupert/hearth/internal/journal"
	"github.com/dukerupert/hearth/internal/model"
)

type HouseholdHandler struct {
	guard   *guard.Guard
	journal *journal.Journal
}

func NewHouseholdHandler(g *guard.Guard, j *journal.Journal) *HouseholdHandler {
	return &HouseholdHandler{guard: g, journal: j}
}

// Leave handles POST /api/households/{household_id}/leave
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "household_id")
	if err != nil {
		invalidID(w, "household_id")
		return
	}

	if err := h.guard.Leave(r.Context(), auth.UserID(r.Context()), householdID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActivities handles GET /api/households/{household_id}/activities
func (h *HouseholdHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "household_id")
	if err != nil {
		invalidID(w, "household_id")
		return
	}

	if _, err := h.guard.ActiveMember(auth.UserID(r.Context()), householdID); err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	activities, err := h.journal.History(householdID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}
