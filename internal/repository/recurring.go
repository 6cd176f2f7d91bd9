package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
)

var recurringColumns = []string{
	"id", "category", "tier", "total_needed", "drop_location", "pot_size", "description",
	"frequency", "expire_after_hours", "last_run_at", "created_at",
}

// RecurringRepository handles database operations for recurring task definitions.
type RecurringRepository struct {
	pool *pgxpool.Pool
}

// NewRecurringRepository creates a new RecurringRepository.
func NewRecurringRepository(pool *pgxpool.Pool) *RecurringRepository {
	return &RecurringRepository{pool: pool}
}

func scanDefinition(row pgx.Row) (*domain.RecurringDefinition, error) {
	var d domain.RecurringDefinition
	err := row.Scan(
		&d.ID,
		&d.Category,
		&d.Tier,
		&d.TotalNeeded,
		&d.DropLocation,
		&d.PotSize,
		&d.Description,
		&d.Frequency,
		&d.ExpireAfterHours,
		&d.LastRunAt,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("scan recurring definition: %w", err)
	}
	return &d, nil
}

// GetByID retrieves a recurring definition by ID.
func (r *RecurringRepository) GetByID(ctx context.Context, id string) (*domain.RecurringDefinition, error) {
	query, args, err := psql.
		Select(recurringColumns...).
		From("recurring_definitions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for recurring definition %s: %w", id, err)
	}

	return scanDefinition(r.pool.QueryRow(ctx, query, args...))
}

// List returns every recurring definition ordered by id.
func (r *RecurringRepository) List(ctx context.Context) ([]*domain.RecurringDefinition, error) {
	query, args, err := psql.
		Select(recurringColumns...).
		From("recurring_definitions").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recurring definitions: %w", err)
	}
	defer rows.Close()

	var defs []*domain.RecurringDefinition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return defs, nil
}

// Upsert inserts a definition or replaces its template fields, keeping last_run_at.
func (r *RecurringRepository) Upsert(ctx context.Context, d *domain.RecurringDefinition) error {
	query, args, err := psql.
		Insert("recurring_definitions").
		Columns("id", "category", "tier", "total_needed", "drop_location", "pot_size",
			"description", "frequency", "expire_after_hours").
		Values(d.ID, d.Category, d.Tier, d.TotalNeeded, d.DropLocation, d.PotSize,
			d.Description, d.Frequency, d.ExpireAfterHours).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			tier = EXCLUDED.tier,
			total_needed = EXCLUDED.total_needed,
			drop_location = EXCLUDED.drop_location,
			pot_size = EXCLUDED.pot_size,
			description = EXCLUDED.description,
			frequency = EXCLUDED.frequency,
			expire_after_hours = EXCLUDED.expire_after_hours
			RETURNING last_run_at, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Upsert query for recurring definition %s: %w", d.ID, err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&d.LastRunAt, &d.CreatedAt); err != nil {
		return fmt.Errorf("upsert recurring definition %s: %w", d.ID, err)
	}
	return nil
}

// MarkRun records that a definition fired at the given time.
func (r *RecurringRepository) MarkRun(ctx context.Context, tx pgx.Tx, id string, at time.Time) error {
	query, args, err := psql.
		Update("recurring_definitions").
		Set("last_run_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkRun query for recurring definition %s: %w", id, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark recurring definition %s run: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDefinitionNotFound
	}
	return nil
}
