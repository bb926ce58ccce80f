// Package task owns the task lifecycle: creation, edits, the completion
// state transition with its point award, and recurring follow-ups.
package task

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
	"github.com/dukerupert/hearth/internal/recurrence"
	"github.com/dukerupert/hearth/internal/store"
)

type Service struct {
	db      *sql.DB
	tasks   *store.TaskStore
	guard   *guard.Guard
	ledger  *ledger.Ledger
	journal *journal.Journal
	events  *realtime.Broadcaster
	hooks   *postcommit.Runner
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, tasks *store.TaskStore, g *guard.Guard, l *ledger.Ledger, j *journal.Journal, events *realtime.Broadcaster, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		tasks:   tasks,
		guard:   g,
		ledger:  l,
		journal: j,
		events:  events,
		hooks:   postcommit.NewRunner(logger),
		logger:  logger,
		now:     time.Now,
	}
}

// CreateInput carries the fields a caller may set when creating or editing
// a task. RecurringType is honored only when Recurring is set.
type CreateInput struct {
	HouseholdID   int64
	Title         string
	Description   string
	Points        int
	Priority      string
	DueDate       *time.Time
	AssignedTo    *int64
	Recurring     bool
	RecurringType string
}

// ListFilter narrows List results.
type ListFilter struct {
	Completed    *bool
	AssignedToMe bool
	Limit        int
	Offset       int
}

// CompletionResult is what a completion (or un-completion) changed: the task
// and the assignee with their new balance and streak.
type CompletionResult struct {
	Task *model.Task `json:"task"`
	User *model.User `json:"user"`
}

func (s *Service) validate(in *CreateInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if len(in.Title) < 2 {
		return apperr.Validation("title must be at least 2 characters")
	}

	if in.Points < 0 {
		in.Points = 0
	}

	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return apperr.Validation("invalid priority %q", in.Priority)
	}

	if !in.Recurring {
		in.RecurringType = model.RecurringNone
	} else if !model.ValidRecurringType(in.RecurringType) || in.RecurringType == model.RecurringNone {
		return apperr.Validation("invalid recurring type %q", in.RecurringType)
	}

	if in.AssignedTo != nil {
		if _, err := s.guard.ActiveMember(*in.AssignedTo, in.HouseholdID); err != nil {
			if apperr.Is(err, apperr.CodeAccessDenied) {
				return apperr.Validation("assignee is not an active member of this household")
			}
			return err
		}
	}

	return nil
}

// Create validates input, persists the task, and emits task_created.
func (s *Service) Create(ctx context.Context, in CreateInput, requesterID int64) (*model.Task, error) {
	if _, err := s.guard.ActiveMember(requesterID, in.HouseholdID); err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	t, err := s.tasks.Create(&model.Task{
		HouseholdID:   in.HouseholdID,
		Title:         in.Title,
		Description:   in.Description,
		Points:        in.Points,
		Priority:      in.Priority,
		DueDate:       in.DueDate,
		AssignedTo:    in.AssignedTo,
		RecurringType: in.RecurringType,
		CreatedBy:     requesterID,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.publish(ctx, t.HouseholdID, realtime.EventTaskCreated, taskPayload(t, requesterID))
	return t, nil
}

// Get returns a task visible to the requester.
func (s *Service) Get(ctx context.Context, taskID, requesterID int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}
	if _, err := s.guard.ActiveMember(requesterID, t.HouseholdID); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns household tasks matching the filter.
func (s *Service) List(ctx context.Context, householdID, requesterID int64, filter ListFilter) ([]model.Task, error) {
	if _, err := s.guard.ActiveMember(requesterID, householdID); err != nil {
		return nil, err
	}

	sf := store.TaskFilter{
		Completed: filter.Completed,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	if filter.AssignedToMe {
		sf.AssignedTo = &requesterID
	}
	return s.tasks.List(householdID, sf)
}

// Complete marks a task done exactly once and awards its points to the
// assignee. An unassigned task is claimed by the completer. A second
// completion attempt gets Conflict, never a silent no-op, so client retries
// cannot double-credit.
func (s *Service) Complete(ctx context.Context, taskID, requesterID int64) (*CompletionResult, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}

	m, err := s.guard.ActiveMember(requesterID, t.HouseholdID)
	if err != nil {
		return nil, err
	}

	var (
		completed *model.Task
		assignee  *model.User
		now       = s.now()
	)
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.tasks.GetByIDTx(tx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFound("task")
		}
		if t.IsCompleted {
			return apperr.Conflict(apperr.ReasonAlreadyCompleted, "task is already completed")
		}
		if t.AssignedTo != nil && *t.AssignedTo != requesterID && !m.IsAdmin() {
			return apperr.AccessDenied("only the assignee or an admin may complete this task")
		}

		assigneeID := requesterID
		if t.AssignedTo != nil {
			assigneeID = *t.AssignedTo
		}

		if err := s.tasks.SetCompletionTx(tx, t.ID, true, &now, &assigneeID); err != nil {
			return err
		}

		u, err := s.ledger.Award(tx, assigneeID, t.Points, now)
		if err != nil {
			return err
		}

		t.IsCompleted = true
		t.CompletedAt = &now
		t.AssignedTo = &assigneeID
		completed, assignee = t, u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}

	s.hooks.Run(
		postcommit.Hook{Name: "journal", Run: func() error {
			s.journal.Record(assignee.ID, completed.HouseholdID, model.ActivityTaskCompleted, completed.Points, "task", completed.ID)
			return nil
		}},
		postcommit.Hook{Name: "recurring_spawn", Run: func() error {
			return s.spawnNext(ctx, completed, now)
		}},
		postcommit.Hook{Name: "broadcast", Run: func() error {
			payload := taskPayload(completed, requesterID)
			payload["new_points"] = assignee.Points
			payload["streak_days"] = assignee.StreakDays
			s.events.Publish(ctx, realtime.NewEvent(completed.HouseholdID, realtime.EventTaskCompleted, payload))
			return nil
		}},
	)

	return &CompletionResult{Task: completed, User: assignee}, nil
}

// Uncomplete reverts a completed task and reverses its point award. The
// ledger floors the balance at zero if the points were already spent.
func (s *Service) Uncomplete(ctx context.Context, taskID, requesterID int64) (*CompletionResult, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}

	m, err := s.guard.ActiveMember(requesterID, t.HouseholdID)
	if err != nil {
		return nil, err
	}

	var (
		reverted *model.Task
		assignee *model.User
		now      = s.now()
	)
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.tasks.GetByIDTx(tx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFound("task")
		}
		if !t.IsCompleted {
			return apperr.Conflict(apperr.ReasonNotCompleted, "task is not completed")
		}
		if t.AssignedTo != nil && *t.AssignedTo != requesterID && !m.IsAdmin() {
			return apperr.AccessDenied("only the assignee or an admin may uncomplete this task")
		}

		if err := s.tasks.SetCompletionTx(tx, t.ID, false, nil, t.AssignedTo); err != nil {
			return err
		}

		if t.AssignedTo != nil {
			u, err := s.ledger.Award(tx, *t.AssignedTo, -t.Points, now)
			if err != nil {
				return err
			}
			assignee = u
		}

		t.IsCompleted = false
		t.CompletedAt = nil
		reverted = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("uncomplete task: %w", err)
	}

	s.hooks.Run(
		postcommit.Hook{Name: "journal", Run: func() error {
			if assignee != nil {
				s.journal.Record(assignee.ID, reverted.HouseholdID, model.ActivityTaskUncompleted, -reverted.Points, "task", reverted.ID)
			}
			return nil
		}},
		postcommit.Hook{Name: "broadcast", Run: func() error {
			payload := taskPayload(reverted, requesterID)
			if assignee != nil {
				payload["new_points"] = assignee.Points
			}
			s.events.Publish(ctx, realtime.NewEvent(reverted.HouseholdID, realtime.EventTaskUpdated, payload))
			return nil
		}},
	)

	return &CompletionResult{Task: reverted, User: assignee}, nil
}

// Update edits a task. Only the creator or a household admin may edit, and
// the same validation as Create applies.
func (s *Service) Update(ctx context.Context, taskID int64, in CreateInput, requesterID int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}

	m, err := s.guard.ActiveMember(requesterID, t.HouseholdID)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy != requesterID && !m.IsAdmin() {
		return nil, apperr.AccessDenied("only the creator or an admin may edit this task")
	}

	in.HouseholdID = t.HouseholdID
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	t.Title = in.Title
	t.Description = in.Description
	t.Points = in.Points
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.AssignedTo = in.AssignedTo
	t.RecurringType = in.RecurringType

	updated, err := s.tasks.Update(t)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.publish(ctx, updated.HouseholdID, realtime.EventTaskUpdated, taskPayload(updated, requesterID))
	return updated, nil
}

// Delete removes a task. Only the creator or a household admin may delete.
func (s *Service) Delete(ctx context.Context, taskID, requesterID int64) error {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFound("task")
	}

	m, err := s.guard.ActiveMember(requesterID, t.HouseholdID)
	if err != nil {
		return err
	}
	if t.CreatedBy != requesterID && !m.IsAdmin() {
		return apperr.AccessDenied("only the creator or an admin may delete this task")
	}

	if err := s.tasks.Delete(taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.publish(ctx, t.HouseholdID, realtime.EventTaskDeleted, map[string]any{
		"task_id":  t.ID,
		"actor_id": requesterID,
	})
	return nil
}

// AddComment attaches a comment from any active member and emits
// comment_added.
func (s *Service) AddComment(ctx context.Context, taskID, requesterID int64, body string) (*model.TaskComment, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}

	if _, err := s.guard.ActiveMember(requesterID, t.HouseholdID); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation("comment body is required")
	}

	c, err := s.tasks.CreateComment(taskID, requesterID, body)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.publish(ctx, t.HouseholdID, realtime.EventCommentAdded, map[string]any{
		"task_id":    t.ID,
		"comment_id": c.ID,
		"actor_id":   requesterID,
		"created_at": c.CreatedAt,
	})
	return c, nil
}

// ListComments returns a task's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, taskID, requesterID int64) ([]model.TaskComment, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task")
	}
	if _, err := s.guard.ActiveMember(requesterID, t.HouseholdID); err != nil {
		return nil, err
	}
	return s.tasks.ListComments(taskID)
}

// spawnNext creates the follow-up occurrence of a recurring task. It runs
// post-commit: a failure is logged and never rolls back the completion.
func (s *Service) spawnNext(ctx context.Context, completed *model.Task, completedAt time.Time) error {
	if completed.RecurringType == model.RecurringNone {
		return nil
	}

	next, err := s.tasks.Create(recurrence.NextOccurrence(completed, completedAt))
	if err != nil {
		return fmt.Errorf("spawn recurring task: %w", err)
	}

	s.logger.Info("spawned recurring task", "task_id", next.ID, "due_date", next.DueDate, "from_task_id", completed.ID)
	s.publish(ctx, next.HouseholdID, realtime.EventTaskCreated, taskPayload(next, completed.CreatedBy))
	return nil
}

func (s *Service) publish(ctx context.Context, householdID int64, name string, payload map[string]any) {
	s.events.Publish(ctx, realtime.NewEvent(householdID, name, payload))
}

func taskPayload(t *model.Task, actorID int64) map[string]any {
	p := map[string]any{
		"task_id":      t.ID,
		"title":        t.Title,
		"points":       t.Points,
		"is_completed": t.IsCompleted,
		"actor_id":     actorID,
	}
	if t.AssignedTo != nil {
		p["assigned_to"] = *t.AssignedTo
	}
	if t.CompletedAt != nil {
		p["completed_at"] = *t.CompletedAt
	}
	return p
}
