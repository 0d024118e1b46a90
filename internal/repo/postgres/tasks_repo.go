package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, priority, assigned_to, created_by,
	due_date, completed_at, response, response_submitted_at, created_at, updated_at`

// sort keys to ORDER BY expressions; priority sorts by rank, not by name
var taskSortExpr = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"status":    "status",
	"title":     "title",
	"priority":  "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 END",
}

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func scanTask(row pgx.Row, extra ...any) (task.Task, error) {
	var t task.Task
	var status, priority string

	dest := []any{
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.AssignedToID, &t.CreatedByID,
		&t.DueDate, &t.CompletedAt, &t.Response, &t.ResponseSubmittedAt, &t.CreatedAt, &t.UpdatedAt,
	}
	dest = append(dest, extra...)

	err := row.Scan(dest...)
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	return t, err
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := observe(r.prom, "tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.AssignedToID, t.CreatedByID,
			t.DueDate, t.CompletedAt, t.Response, t.ResponseSubmittedAt, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task

	err := observe(r.prom, "tasks.get_by_id", func() error {
		var err error
		t, err = scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

// whereClause renders scope and filters, numbering placeholders from 1.
func whereClause(scope task.Scope, status *task.Status, priority *task.Priority) (string, []interface{}) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if scope.AssigneeID != "" {
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", argsPosition))
		args = append(args, scope.AssigneeID)
		argsPosition++
	}

	if status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, string(*status))
		argsPosition++
	}

	if priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, string(*priority))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(s task.Sort) string {
	expr, ok := taskSortExpr[s.Field]
	if !ok {
		expr = "created_at"
		s.Desc = true
	}

	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}

	// id keeps the ordering stable for pagination
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id %s", expr, dir, dir)
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) (task.Page, error) {
	where, args := whereClause(filter.Scope, filter.Status, filter.Priority)

	query := `SELECT ` + taskColumns + `, COUNT(*) OVER() AS total FROM tasks` + where +
		orderBy(filter.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	args = append(args, filter.Limit, filter.Offset)

	output := make([]task.Task, 0, filter.Limit)
	total := 0

	err := observe(r.prom, "tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t int
			item, err := scanTask(rows, &t)
			if err != nil {
				return err
			}
			total = t
			output = append(output, item)
		}
		return rows.Err()
	})
	if err != nil {
		return task.Page{}, err
	}

	// a page past the end carries no window count
	if len(output) == 0 && filter.Offset > 0 {
		countWhere, countArgs := whereClause(filter.Scope, filter.Status, filter.Priority)
		err = observe(r.prom, "tasks.count", func() error {
			return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+countWhere, countArgs...).Scan(&total)
		})
		if err != nil {
			return task.Page{}, err
		}
	}

	return task.Page{Items: output, Total: total}, nil
}

func (r *TasksRepo) Update(ctx context.Context, id string, patch task.Patch) (task.Task, error) {
	sets := []string{}
	args := []interface{}{id}

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.AssignedToID != nil {
		add("assigned_to", *patch.AssignedToID)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}
	if patch.Response != nil {
		add("response", *patch.Response)
	}
	if patch.ResponseSubmittedAt != nil {
		add("response_submitted_at", *patch.ResponseSubmittedAt)
	}
	add("updated_at", patch.UpdatedAt)

	var t task.Task
	err := observe(r.prom, "tasks.update", func() error {
		var err error
		t, err = scanTask(r.pool.QueryRow(ctx,
			`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+taskColumns,
			args...,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := observe(r.prom, "tasks.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TasksRepo) Count(ctx context.Context, scope task.Scope) (int, error) {
	where, args := whereClause(scope, nil, nil)

	n := 0
	err := observe(r.prom, "tasks.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&n)
	})
	return n, err
}

func (r *TasksRepo) groupBy(ctx context.Context, op, column, where string, args []interface{}) ([]task.GroupCount, error) {
	out := make([]task.GroupCount, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+column+`, COUNT(*) FROM tasks`+where+` GROUP BY `+column+` ORDER BY `+column,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var g task.GroupCount
			if err := rows.Scan(&g.Key, &g.Count); err != nil {
				return err
			}
			out = append(out, g)
		}
		return rows.Err()
	})
	return out, err
}

func (r *TasksRepo) Stats(ctx context.Context, scope task.Scope, window task.StatsWindow) (task.Stats, error) {
	where, args := whereClause(scope, nil, nil)

	var st task.Stats
	var err error

	st.ByStatus, err = r.groupBy(ctx, "tasks.stats_by_status", "status", where, args)
	if err != nil {
		return task.Stats{}, err
	}

	st.ByPriority, err = r.groupBy(ctx, "tasks.stats_by_priority", "priority", where, args)
	if err != nil {
		return task.Stats{}, err
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE due_date < $%d AND status NOT IN ('completed', 'cancelled')),
		       COUNT(*) FILTER (WHERE status = 'completed' AND completed_at >= $%d)
		FROM tasks`, n+1, n+2) + where

	countArgs := append(append([]interface{}{}, args...), window.Now, window.WeekAgo)

	err = observe(r.prom, "tasks.stats_counts", func() error {
		return r.pool.QueryRow(ctx, query, countArgs...).Scan(&st.Total, &st.Overdue, &st.CompletedThisWeek)
	})
	if err != nil {
		return task.Stats{}, err
	}

	return st, nil
}

func (r *TasksRepo) CountByAssignee(ctx context.Context) ([]task.UserBreakdown, error) {
	out := make([]task.UserBreakdown, 0)

	err := observe(r.prom, "tasks.count_by_assignee", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT assigned_to,
			       COUNT(*),
			       COUNT(*) FILTER (WHERE status = 'completed'),
			       COUNT(*) FILTER (WHERE status = 'pending'),
			       COUNT(*) FILTER (WHERE status = 'in-progress')
			FROM tasks
			GROUP BY assigned_to`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b task.UserBreakdown
			if err := rows.Scan(&b.UserID, &b.Total, &b.Completed, &b.Pending, &b.InProgress); err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	return out, err
}

func (r *TasksRepo) Recent(ctx context.Context, limit int) ([]task.Task, error) {
	out := make([]task.Task, 0, limit)

	err := observe(r.prom, "tasks.recent", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	return out, err
}
