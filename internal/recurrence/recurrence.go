// Package recurrence derives the next occurrence of a recurring task.
package recurrence

import (
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

// NextDueDate returns the due date for the occurrence that follows dueDate.
// Daily adds one day, weekly adds seven, monthly advances one calendar month
// with the day-of-month clamped to the target month's last valid day
// (Jan 31 -> Feb 28, or Feb 29 in a leap year). Returns the zero time for a
// non-recurring type.
func NextDueDate(recurringType string, dueDate time.Time) time.Time {
	switch recurringType {
	case model.RecurringDaily:
		return dueDate.AddDate(0, 0, 1)
	case model.RecurringWeekly:
		return dueDate.AddDate(0, 0, 7)
	case model.RecurringMonthly:
		return addMonthClamped(dueDate)
	}
	return time.Time{}
}

// addMonthClamped advances t by one month. time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 3), so the day is clamped first when the target
// month is shorter.
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	last := lastDayOfMonth(y, m+1)
	if d > last {
		d = last
	}
	return time.Date(y, m+1, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextOccurrence builds the task for the following occurrence of a
// just-completed recurring task. Title, description, points, priority,
// recurrence, assignee, creator, and household all carry over; completion
// state is reset. A task with no due date recurs from the completion time.
func NextOccurrence(completed *model.Task, completedAt time.Time) *model.Task {
	base := completedAt
	if completed.DueDate != nil {
		base = *completed.DueDate
	}
	next := NextDueDate(completed.RecurringType, base)

	return &model.Task{
		HouseholdID:   completed.HouseholdID,
		Title:         completed.Title,
		Description:   completed.Description,
		Points:        completed.Points,
		Priority:      completed.Priority,
		DueDate:       &next,
		AssignedTo:    completed.AssignedTo,
		RecurringType: completed.RecurringType,
		CreatedBy:     completed.CreatedBy,
	}
}
