package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
)

var memberColumns = []string{
	"user_id", "username", "token", "is_owner", "is_officer", "is_admin", "xp", "balance",
	"total_earned", "total_contributed", "tasks_created", "tasks_claimed", "tasks_completed",
	"registered_at",
}

// MemberCounter names a per-member task counter column.
type MemberCounter string

const (
	CounterTasksCreated   MemberCounter = "tasks_created"
	CounterTasksClaimed   MemberCounter = "tasks_claimed"
	CounterTasksCompleted MemberCounter = "tasks_completed"
)

// MemberRepository handles database operations for members. It is also the
// currency ledger and progression store the task engine pays into.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.UserID,
		&m.Username,
		&m.Token,
		&m.IsOwner,
		&m.IsOfficer,
		&m.IsAdmin,
		&m.XP,
		&m.Balance,
		&m.TotalEarned,
		&m.TotalContrib,
		&m.TasksCreated,
		&m.TasksClaimed,
		&m.TasksCompleted,
		&m.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

// GetByToken finds a member by authentication token.
func (r *MemberRepository) GetByToken(ctx context.Context, token string) (*domain.Member, error) {
	query, args, err := psql.
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return scanMember(r.pool.QueryRow(ctx, query, args...))
}

// GetByID retrieves a member by user ID.
func (r *MemberRepository) GetByID(ctx context.Context, userID int64) (*domain.Member, error) {
	query, args, err := psql.
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return scanMember(r.pool.QueryRow(ctx, query, args...))
}

// Upsert registers a member or updates its name, token and role flags.
// Progression and currency fields are left untouched for existing members.
func (r *MemberRepository) Upsert(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	query, args, err := psql.
		Insert("members").
		Columns("user_id", "username", "token", "is_owner", "is_officer", "is_admin").
		Values(m.UserID, m.Username, m.Token, m.IsOwner, m.IsOfficer, m.IsAdmin).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			token = COALESCE(EXCLUDED.token, members.token),
			is_owner = EXCLUDED.is_owner,
			is_officer = EXCLUDED.is_officer,
			is_admin = EXCLUDED.is_admin
			RETURNING ` + strings.Join(memberColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return scanMember(r.pool.QueryRow(ctx, query, args...))
}

// ensure creates a placeholder member row if the user is unknown, matching a
// get-or-create on first reward.
func (r *MemberRepository) ensure(ctx context.Context, tx pgx.Tx, userID int64) error {
	query, args, err := psql.
		Insert("members").
		Columns("user_id", "username").
		Values(userID, strconv.FormatInt(userID, 10)).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure member %d: %w", userID, err)
	}
	return nil
}

// GainXP adds amount XP to a member (never going below zero) and returns the
// XP before and after the change.
func (r *MemberRepository) GainXP(ctx context.Context, tx pgx.Tx, userID int64, amount int) (oldXP, newXP int, err error) {
	if err := r.ensure(ctx, tx, userID); err != nil {
		return 0, 0, err
	}

	// The old value is read under the row lock taken by UPDATE.
	err = tx.QueryRow(ctx, `
		WITH prev AS (
			SELECT xp FROM members WHERE user_id = $1 FOR UPDATE
		)
		UPDATE members
		SET xp = GREATEST(0, members.xp + $2)
		FROM prev
		WHERE members.user_id = $1
		RETURNING prev.xp, members.xp
	`, userID, amount).Scan(&oldXP, &newXP)
	if err != nil {
		return 0, 0, fmt.Errorf("gain xp for member %d: %w", userID, err)
	}
	return oldXP, newXP, nil
}

// AwardCurrency credits amount to a member's balance and lifetime earnings.
func (r *MemberRepository) AwardCurrency(ctx context.Context, tx pgx.Tx, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: award amount %d", domain.ErrInvalidAmount, amount)
	}
	if err := r.ensure(ctx, tx, userID); err != nil {
		return err
	}

	query, args, err := psql.
		Update("members").
		Set("balance", sq.Expr("balance + ?", amount)).
		Set("total_earned", sq.Expr("total_earned + ?", amount)).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("award currency to member %d: %w", userID, err)
	}
	return nil
}

// AddContribution bumps a member's lifetime contributed total.
func (r *MemberRepository) AddContribution(ctx context.Context, tx pgx.Tx, userID int64, amount int64) error {
	if err := r.ensure(ctx, tx, userID); err != nil {
		return err
	}

	query, args, err := psql.
		Update("members").
		Set("total_contributed", sq.Expr("total_contributed + ?", amount)).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("add contribution for member %d: %w", userID, err)
	}
	return nil
}

// Increment adds one to a task counter of a member.
func (r *MemberRepository) Increment(ctx context.Context, tx pgx.Tx, userID int64, counter MemberCounter) error {
	if err := r.ensure(ctx, tx, userID); err != nil {
		return err
	}

	column := string(counter)
	query, args, err := psql.
		Update("members").
		Set(column, sq.Expr(column+" + 1")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment %s for member %d: %w", column, userID, err)
	}
	return nil
}

// Leaderboard returns up to limit members ordered by XP desc, then user id.
func (r *MemberRepository) Leaderboard(ctx context.Context, limit int) ([]*domain.Member, error) {
	query, args, err := psql.
		Select(memberColumns...).
		From("members").
		OrderBy("xp DESC", "user_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return members, nil
}
