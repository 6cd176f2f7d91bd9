package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
)

var eventColumns = []string{"id", "task_id", "actor_id", "type", "old_status", "new_status", "comment", "created_at"}

// TaskEventRepository stores the append-only audit trail of tasks: status
// changes, recorded deliveries and pot payouts.
type TaskEventRepository struct {
	pool *pgxpool.Pool
}

// NewTaskEventRepository creates a new TaskEventRepository.
func NewTaskEventRepository(pool *pgxpool.Pool) *TaskEventRepository {
	return &TaskEventRepository{pool: pool}
}

// Append writes events in order within the caller's transaction and fills in
// their ids. A zero CreatedAt takes the database clock.
func (r *TaskEventRepository) Append(ctx context.Context, tx pgx.Tx, events ...*domain.TaskEvent) error {
	for _, e := range events {
		cols := []string{"task_id", "actor_id", "type", "old_status", "new_status", "comment"}
		vals := []any{e.TaskID, e.ActorID, e.Type, e.OldStatus, e.NewStatus, e.Comment}
		if !e.CreatedAt.IsZero() {
			cols = append(cols, "created_at")
			vals = append(vals, e.CreatedAt)
		}

		query, args, err := psql.
			Insert("task_events").
			Columns(cols...).
			Values(vals...).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
			return fmt.Errorf("append %s event to task %d: %w", e.Type, e.TaskID, err)
		}
	}
	return nil
}

// ListByTask returns the events of a task oldest first. When types is not
// empty only events of those types are returned, which is how the delivery and
// payout ledger of a community task is read.
func (r *TaskEventRepository) ListByTask(ctx context.Context, taskID int64, types ...domain.EventType) ([]*domain.TaskEvent, error) {
	where := sq.And{sq.Eq{"task_id": taskID}}
	if len(types) > 0 {
		where = append(where, sq.Eq{"type": types})
	}

	query, args, err := psql.
		Select(eventColumns...).
		From("task_events").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events of task %d: %w", taskID, err)
	}

	events, err := pgx.CollectRows(rows, scanTaskEvent)
	if err != nil {
		return nil, fmt.Errorf("collect events of task %d: %w", taskID, err)
	}
	return events, nil
}

func scanTaskEvent(row pgx.CollectableRow) (*domain.TaskEvent, error) {
	var e domain.TaskEvent
	err := row.Scan(&e.ID, &e.TaskID, &e.ActorID, &e.Type, &e.OldStatus, &e.NewStatus, &e.Comment, &e.CreatedAt)
	return &e, err
}
