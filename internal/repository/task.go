package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
)

// taskIDLockKey is the advisory lock key that serializes task id allocation.
const taskIDLockKey = 0x7461736b // "task"

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "kind", "category", "tier", "quantity", "description", "delivery_method",
	"drop_location", "created_by", "claimed_by", "status", "tip", "pot_size",
	"total_needed", "verified", "xp_awarded", "expires_at", "recurring_definition_id",
	"created_at", "completed_at", "verified_at", "closed_at", "expired_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Kind,
		&task.Category,
		&task.Tier,
		&task.Quantity,
		&task.Description,
		&task.DeliveryMethod,
		&task.DropLocation,
		&task.CreatedBy,
		&task.ClaimedBy,
		&task.Status,
		&task.Tip,
		&task.PotSize,
		&task.TotalNeeded,
		&task.Verified,
		&task.XPAwarded,
		&task.ExpiresAt,
		&task.RecurringDefinitionID,
		&task.CreatedAt,
		&task.CompletedAt,
		&task.VerifiedAt,
		&task.ClosedAt,
		&task.ExpiredAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID int64) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
// The row lock serializes every operation on the same task id.
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %d: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Create inserts a new task within a transaction, assigning it max(id)+1.
// Returns domain.ErrIDConflict if the id was taken concurrently.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", taskIDLockKey); err != nil {
		return nil, fmt.Errorf("lock task id allocation: %w", err)
	}

	idQuery, idArgs, err := psql.Select("COALESCE(MAX(id), 0) + 1").From("tasks").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build next id query: %w", err)
	}
	if err := tx.QueryRow(ctx, idQuery, idArgs...).Scan(&task.ID); err != nil {
		return nil, fmt.Errorf("allocate task id: %w", err)
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"id", "kind", "category", "tier", "quantity", "description", "delivery_method",
			"drop_location", "created_by", "status", "tip", "pot_size", "total_needed",
			"expires_at", "recurring_definition_id", "created_at", "updated_at",
		).
		Values(
			task.ID,
			task.Kind,
			task.Category,
			task.Tier,
			task.Quantity,
			task.Description,
			task.DeliveryMethod,
			task.DropLocation,
			task.CreatedBy,
			task.Status,
			task.Tip,
			task.PotSize,
			task.TotalNeeded,
			task.ExpiresAt,
			task.RecurringDefinitionID,
			task.CreatedAt,
			task.CreatedAt,
		).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: id %d", domain.ErrIDConflict, task.ID)
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// Update writes the mutable lifecycle fields of a task with optimistic locking.
// Returns ErrInvalidTransition if the stored status no longer equals oldStatus.
func (r *TaskRepository) Update(ctx context.Context, tx pgx.Tx, task *domain.Task, oldStatus domain.TaskStatus) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", task.Status).
		Set("claimed_by", task.ClaimedBy).
		Set("verified", task.Verified).
		Set("xp_awarded", task.XPAwarded).
		Set("completed_at", task.CompletedAt).
		Set("verified_at", task.VerifiedAt).
		Set("closed_at", task.ClosedAt).
		Set("expired_at", task.ExpiredAt).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{
			"id":     task.ID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %d: %w", task.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: task %d is no longer %s", domain.ErrInvalidTransition, task.ID, oldStatus)
	}

	return nil
}

// Delete physically removes a task; contributions and events cascade.
func (r *TaskRepository) Delete(ctx context.Context, tx pgx.Tx, taskID int64) error {
	query, args, err := psql.Delete("tasks").Where(sq.Eq{"id": taskID}).ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %d: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteAll removes every task and returns how many were deleted.
func (r *TaskRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks")
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindOverdue finds all non-terminal tasks whose expiry deadline is at or before now.
func (r *TaskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.LtOrEq{"expires_at": now}).
		Where(sq.NotEq{"status": []domain.TaskStatus{
			domain.TaskStatusClosed,
			domain.TaskStatusExpired,
		}}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindOverdue query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overdue tasks: %w", err)
	}

	return scanTasks(rows)
}
