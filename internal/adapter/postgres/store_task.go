package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/progressor-app/progressor/internal/domain"
	"github.com/progressor-app/progressor/internal/domain/task"
)

const taskColumns = `id, user_id, title, description, status, priority, category,
	est_points, est_time, due_date, start_date, completed_date, created_at, updated_at`

func (s *Store) CreateTask(ctx context.Context, userID string, req task.CreateRequest) (*task.Task, error) {
	status := req.Status
	if status == "" {
		status = task.StatusPending
	}
	priority := req.Priority
	if priority == "" {
		priority = task.PriorityNormal
	}
	category := req.Category
	if category == "" {
		category = task.CategoryGeneral
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, category,
		                    est_points, est_time, due_date, start_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+taskColumns,
		uuid.NewString(), userID, req.Title, req.Description, status, priority, category,
		req.Score, req.EstTime, req.DueDate, req.StartDate)

	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns tasks matching the filter, newest first with id as
// the tie-breaker so pagination is deterministic.
func (s *Store) ListTasks(ctx context.Context, userID string, f task.Filter) ([]task.Task, error) {
	where, args := taskWhere(userID, f)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CountTasks(ctx context.Context, userID string, f task.Filter) (int, error) {
	where, args := taskWhere(userID, f)
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// UpdateTaskStatus moves a task to a new status. Entering in_progress
// stamps start_date, entering completed stamps completed_date.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status task.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = $2,
		        start_date = CASE WHEN $2 = 'in_progress' AND start_date IS NULL THEN now() ELSE start_date END,
		        completed_date = CASE WHEN $2 = 'completed' THEN now() ELSE completed_date END,
		        updated_at = now()
		 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update task status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task status %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// taskWhere compiles a task.Filter into a WHERE clause. Must stay in
// step with task.Filter.Matches, which the test fakes use.
func taskWhere(userID string, f task.Filter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		clauses = append(clauses, "status = ANY("+arg(statusStrings(f.Statuses))+")")
	}
	if len(f.Priorities) > 0 {
		clauses = append(clauses, "priority = ANY("+arg(priorityStrings(f.Priorities))+")")
	}
	if f.DueOn != nil {
		y, m, d := f.DueOn.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, f.DueOn.Location())
		clauses = append(clauses,
			"due_date >= "+arg(dayStart),
			"due_date < "+arg(dayStart.AddDate(0, 0, 1)))
	}
	if f.MissedBefore != nil {
		clauses = append(clauses,
			"due_date < "+arg(*f.MissedBefore),
			"status IN ('pending', 'in_progress')")
	}
	if f.TitleContains != "" {
		clauses = append(clauses, "title ILIKE "+arg("%"+escapeLike(f.TitleContains)+"%"))
	}
	if f.CreatedAfter != nil {
		clauses = append(clauses, "created_at >= "+arg(*f.CreatedAfter))
	}

	return strings.Join(clauses, " AND "), args
}

// likeEscaper neutralizes ILIKE metacharacters so user text matches as
// a literal substring, same as Filter.Matches does in memory.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func statusStrings(ss []task.Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func priorityStrings(ps []task.Priority) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Category, &t.Score, &t.EstTime, &t.DueDate, &t.StartDate, &t.CompletedDate,
		&t.CreatedAt, &t.UpdatedAt)
	return t, err
}
