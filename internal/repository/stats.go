package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/guildtask/internal/domain"
)

// StatsFilters holds filters for statistics queries.
type StatsFilters struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	UserID      *int64 // Optional: filter by specific member
}

// MemberStatsResult holds task statistics for a single member.
type MemberStatsResult struct {
	UserID          int64
	Username        string
	TasksCompleted  int
	TasksExpired    int
	TasksInProgress int
	Contributed     int64
}

// GuildStatsResult holds overall task statistics.
type GuildStatsResult struct {
	TotalTasksCreated int
	TasksByStatus     map[string]int
	TasksByKind       map[string]int
	OverdueCount      int
	PotOutstanding    int64
}

// GetMemberStats retrieves per-member statistics for the period.
func (r *TaskRepository) GetMemberStats(ctx context.Context, filters StatsFilters) ([]MemberStatsResult, error) {
	query := `
		SELECT
			m.user_id,
			m.username,
			COUNT(CASE WHEN t.status = 'CLOSED' AND t.closed_at >= $1 AND t.closed_at <= $2 THEN 1 END) as tasks_completed,
			COUNT(CASE WHEN t.status = 'EXPIRED' AND t.expired_at >= $1 AND t.expired_at <= $2 THEN 1 END) as tasks_expired,
			COUNT(CASE WHEN t.status IN ('CLAIMED', 'PENDING', 'VERIFIED') THEN 1 END) as tasks_in_progress,
			COALESCE((
				SELECT SUM(c.amount)
				FROM task_contributions c
				WHERE c.user_id = m.user_id AND c.recorded_at >= $1 AND c.recorded_at <= $2
			), 0)::BIGINT as contributed
		FROM members m
		LEFT JOIN tasks t ON t.claimed_by = m.user_id
	`

	args := []interface{}{filters.PeriodStart, filters.PeriodEnd}

	if filters.UserID != nil {
		query += " WHERE m.user_id = $3"
		args = append(args, *filters.UserID)
	}

	query += " GROUP BY m.user_id, m.username ORDER BY m.user_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query member stats: %w", err)
	}
	defer rows.Close()

	var results []MemberStatsResult
	for rows.Next() {
		var result MemberStatsResult
		err := rows.Scan(
			&result.UserID,
			&result.Username,
			&result.TasksCompleted,
			&result.TasksExpired,
			&result.TasksInProgress,
			&result.Contributed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member stats: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member stats rows: %w", err)
	}

	return results, nil
}

// GetGuildStats retrieves overall task statistics.
func (r *TaskRepository) GetGuildStats(ctx context.Context, filters StatsFilters) (*GuildStatsResult, error) {
	var totalCreated int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE created_at >= $1 AND created_at <= $2
	`, filters.PeriodStart, filters.PeriodEnd).Scan(&totalCreated)
	if err != nil {
		return nil, fmt.Errorf("count total tasks: %w", err)
	}

	// Current state, not historical
	tasksByStatus, err := r.countGrouped(ctx, "status")
	if err != nil {
		return nil, err
	}
	tasksByKind, err := r.countGrouped(ctx, "kind")
	if err != nil {
		return nil, err
	}

	var overdueCount int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE status NOT IN ($1, $2)
		  AND expires_at <= NOW()
	`, domain.TaskStatusClosed, domain.TaskStatusExpired).Scan(&overdueCount)
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	// Pots of community tasks that have not been paid out yet
	var outstanding int64
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(pot_size), 0)::BIGINT
		FROM tasks
		WHERE kind = $1 AND status NOT IN ($2, $3)
	`, domain.TaskKindCommunity, domain.TaskStatusClosed, domain.TaskStatusExpired).Scan(&outstanding)
	if err != nil {
		return nil, fmt.Errorf("sum outstanding pots: %w", err)
	}

	return &GuildStatsResult{
		TotalTasksCreated: totalCreated,
		TasksByStatus:     tasksByStatus,
		TasksByKind:       tasksByKind,
		OverdueCount:      overdueCount,
		PotOutstanding:    outstanding,
	}, nil
}

// countGrouped counts tasks grouped by a whitelisted column.
func (r *TaskRepository) countGrouped(ctx context.Context, column string) (map[string]int, error) {
	if column != "status" && column != "kind" {
		return nil, fmt.Errorf("%w: cannot group by %q", domain.ErrInvalidInput, column)
	}

	rows, err := r.pool.Query(ctx, "SELECT "+column+", COUNT(*) FROM tasks GROUP BY "+column)
	if err != nil {
		return nil, fmt.Errorf("query tasks by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", column, err)
	}

	return counts, nil
}
