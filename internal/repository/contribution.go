package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
)

// ContributionRepository owns the append-only contribution log of community tasks.
// Task.Contributions is always derived from it.
type ContributionRepository struct {
	pool *pgxpool.Pool
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return &ContributionRepository{pool: pool}
}

// Create appends a contribution entry within the caller's transaction.
func (r *ContributionRepository) Create(ctx context.Context, tx pgx.Tx, c *domain.Contribution) error {
	query, args, err := psql.
		Insert("task_contributions").
		Columns("task_id", "user_id", "amount", "recorded_at").
		Values(c.TaskID, c.UserID, c.Amount, c.RecordedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("create contribution: %w", err)
	}
	return nil
}

// Totals returns userID -> accumulated amount for a task. Pass the transaction
// holding the task row lock to get a snapshot consistent with the task status.
func (r *ContributionRepository) Totals(ctx context.Context, q Querier, taskID int64) (map[int64]int64, error) {
	totals, err := r.contributors(ctx, q, taskID, 0)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(totals))
	for _, t := range totals {
		out[t.UserID] = t.Amount
	}
	return out, nil
}

// TopContributors returns up to limit contributors ordered by amount desc, user id asc.
// A non-positive limit returns all contributors.
func (r *ContributionRepository) TopContributors(ctx context.Context, taskID int64, limit int) ([]domain.ContributorTotal, error) {
	return r.contributors(ctx, r.pool, taskID, limit)
}

func (r *ContributionRepository) contributors(ctx context.Context, q Querier, taskID int64, limit int) ([]domain.ContributorTotal, error) {
	qb := psql.
		Select("user_id", "SUM(amount)::BIGINT").
		From("task_contributions").
		Where(sq.Eq{"task_id": taskID}).
		GroupBy("user_id").
		OrderBy("SUM(amount) DESC", "user_id ASC")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	var totals []domain.ContributorTotal
	for rows.Next() {
		var t domain.ContributorTotal
		if err := rows.Scan(&t.UserID, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan contribution total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return totals, nil
}

// ListByTask returns every contribution entry of a task in recording order.
func (r *ContributionRepository) ListByTask(ctx context.Context, taskID int64) ([]*domain.Contribution, error) {
	query, args, err := psql.
		Select("id", "task_id", "user_id", "amount", "recorded_at").
		From("task_contributions").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Contribution
	for rows.Next() {
		var c domain.Contribution
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Amount, &c.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		entries = append(entries, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
