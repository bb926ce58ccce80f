package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskFilter narrows List results. Nil fields are ignored.
type TaskFilter struct {
	Completed  *bool
	AssignedTo *int64
	Limit      int
	Offset     int
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completed int
	var dueDate, completedAt sql.NullTime
	var assignedTo sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &t.Points, &t.Priority,
		&dueDate, &completed, &completedAt, &assignedTo, &t.RecurringType,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsCompleted = completed != 0
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if completedAt.Valid {
		c := completedAt.Time
		t.CompletedAt = &c
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	return &t, nil
}

const taskCols = `id, household_id, title, description, points, priority, due_date, is_completed, completed_at, assigned_to, recurring_type, created_by, created_at, updated_at`

func (s *TaskStore) Create(t *model.Task) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, points, priority, due_date, assigned_to, recurring_type, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HouseholdID, t.Title, t.Description, t.Points, t.Priority,
		nullTime(t.DueDate), nullInt(t.AssignedTo), t.RecurringType, t.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) GetByIDTx(tx *sql.Tx, id int64) (*model.Task, error) {
	row := tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(householdID int64, filter TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE household_id = ?`
	args := []any{householdID}

	if filter.Completed != nil {
		query += ` AND is_completed = ?`
		if *filter.Completed {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	if filter.AssignedTo != nil {
		query += ` AND assigned_to = ?`
		args = append(args, *filter.AssignedTo)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(t *model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, points = ?, priority = ?, due_date = ?, assigned_to = ?, recurring_type = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Points, t.Priority,
		nullTime(t.DueDate), nullInt(t.AssignedTo), t.RecurringType, time.Now().UTC(), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// SetCompletionTx writes the completion state transition inside the caller's
// transaction. assignedTo is persisted as well so an unassigned task can be
// claimed by its completer in the same atomic unit.
func (s *TaskStore) SetCompletionTx(tx *sql.Tx, id int64, completed bool, completedAt *time.Time, assignedTo *int64) error {
	var c int
	if completed {
		c = 1
	}
	_, err := tx.Exec(
		`UPDATE tasks SET is_completed = ?, completed_at = ?, assigned_to = ?, updated_at = ? WHERE id = ?`,
		c, nullTime(completedAt), nullInt(assignedTo), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set task completion: %w", err)
	}
	return nil
}

// --- Comment methods ---

func scanComment(scanner interface{ Scan(...any) error }) (*model.TaskComment, error) {
	var c model.TaskComment
	err := scanner.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const commentCols = `id, task_id, user_id, body, created_at`

func (s *TaskStore) CreateComment(taskID, userID int64, body string) (*model.TaskComment, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_comments (task_id, user_id, body) VALUES (?, ?, ?)`,
		taskID, userID, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+commentCols+` FROM task_comments WHERE id = ?`, id)
	return scanComment(row)
}

func (s *TaskStore) ListComments(taskID int64) ([]model.TaskComment, error) {
	rows, err := s.db.Query(
		`SELECT `+commentCols+` FROM task_comments WHERE task_id = ? ORDER BY created_at ASC, id ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.TaskComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// --- Null helpers ---

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
