package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/task"
)

type TaskHandler struct {
	svc *task.Service
}

func NewTaskHandler(svc *task.Service) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type taskRequest struct {
	HouseholdID   int64      `json:"household_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Points        int        `json:"points"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date"`
	AssignedTo    *int64     `json:"assigned_to"`
	Recurring     bool       `json:"recurring"`
	RecurringType string     `json:"recurring_type"`
}

func (req taskRequest) input() task.CreateInput {
	return task.CreateInput{
		HouseholdID:   req.HouseholdID,
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		AssignedTo:    req.AssignedTo,
		Recurring:     req.Recurring,
		RecurringType: req.RecurringType,
	}
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	t, err := h.svc.Create(r.Context(), req.input(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// List handles GET /api/households/{household_id}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r, "household_id")
	if err != nil {
		invalidID(w, "household_id")
		return
	}

	var filter task.ListFilter
	q := r.URL.Query()
	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	filter.AssignedToMe = q.Get("mine") == "true"
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	tasks, err := h.svc.List(r.Context(), householdID, auth.UserID(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	t, err := h.svc.Get(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	t, err := h.svc.Update(r.Context(), id, req.input(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Complete handles POST /api/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	result, err := h.svc.Complete(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Uncomplete handles POST /api/tasks/{id}/uncomplete
func (h *TaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	result, err := h.svc.Uncomplete(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AddComment handles POST /api/tasks/{id}/comments
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	c, err := h.svc.AddComment(r.Context(), id, auth.UserID(r.Context()), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListComments handles GET /api/tasks/{id}/comments
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		invalidID(w, "id")
		return
	}

	comments, err := h.svc.ListComments(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []model.TaskComment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
