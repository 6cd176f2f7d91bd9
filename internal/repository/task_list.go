package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/guildtask/internal/domain"
)

// sortableColumns whitelists the columns a caller may sort by.
var sortableColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"tier":       true,
	"status":     true,
	"pot_size":   true,
	"expires_at": true,
}

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	Statuses  []string // Optional: filter by status
	Kind      *string  // Optional: standard or community
	Category  *string  // Optional: filter by category
	CreatedBy *int64   // Optional: filter by creator
	ClaimedBy *int64   // Optional: filter by claimant
	Overdue   bool     // Optional: show only non-terminal tasks past their expiry
	Now       time.Time
	Sort      []string // Optional: sort fields (with - prefix for DESC)
	Limit     int      // Required: page size
	Offset    int      // Required: page offset
}

// TaskListResult holds a task with computed fields.
type TaskListResult struct {
	Task      *domain.Task
	IsOverdue bool
}

// applyFilters adds the WHERE clauses shared by the page and count queries.
func applyFilters(qb sq.SelectBuilder, filters TaskListFilters) sq.SelectBuilder {
	if len(filters.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": filters.Statuses})
	}
	if filters.Kind != nil {
		qb = qb.Where(sq.Eq{"kind": *filters.Kind})
	}
	if filters.Category != nil {
		qb = qb.Where(sq.Eq{"category": *filters.Category})
	}
	if filters.CreatedBy != nil {
		qb = qb.Where(sq.Eq{"created_by": *filters.CreatedBy})
	}
	if filters.ClaimedBy != nil {
		qb = qb.Where(sq.Eq{"claimed_by": *filters.ClaimedBy})
	}
	if filters.Overdue {
		qb = qb.
			Where(sq.LtOrEq{"expires_at": filters.Now}).
			Where(sq.NotEq{"status": []domain.TaskStatus{domain.TaskStatusClosed, domain.TaskStatusExpired}})
	}
	return qb
}

// List retrieves tasks with filters and pagination.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]TaskListResult, int, error) {
	if filters.Now.IsZero() {
		filters.Now = time.Now()
	}

	qb := applyFilters(psql.Select(taskColumns...).From("tasks"), filters)

	// Apply sorting (default: newest first)
	if len(filters.Sort) == 0 {
		qb = qb.OrderBy("id DESC")
	} else {
		for _, field := range filters.Sort {
			direction := "ASC"
			if strings.HasPrefix(field, "-") {
				direction = "DESC"
				field = field[1:]
			}
			if !sortableColumns[field] {
				return nil, 0, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, field)
			}
			qb = qb.OrderBy(field + " " + direction)
		}
	}

	if filters.Limit > 0 {
		qb = qb.Limit(uint64(filters.Limit))
	}
	if filters.Offset > 0 {
		qb = qb.Offset(uint64(filters.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(*)").From("tasks"), filters).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	results := make([]TaskListResult, len(tasks))
	for i, task := range tasks {
		results[i] = TaskListResult{
			Task:      task,
			IsOverdue: task.IsOverdue(filters.Now),
		}
	}

	return results, total, nil
}

// GetByStatus returns up to limit tasks in status, oldest first. A
// non-positive limit returns all of them.
func (r *TaskRepository) GetByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	results, _, err := r.List(ctx, TaskListFilters{
		Statuses: []string{string(status)},
		Sort:     []string{"created_at", "id"},
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", status, err)
	}

	tasks := make([]*domain.Task, len(results))
	for i, res := range results {
		tasks[i] = res.Task
	}
	return tasks, nil
}
