package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/payout"
	"github.com/mtlprog/guildtask/internal/progression"
	"github.com/mtlprog/guildtask/internal/repository"
)

// TaskService coordinates task operations and state transitions.
// Every mutating call runs in one transaction that holds the task row lock,
// so operations on the same task are serialized and nothing is reported as
// done before it is committed.
type TaskService struct {
	pool        *pgxpool.Pool
	taskRepo    *repository.TaskRepository
	eventRepo   *repository.TaskEventRepository
	contribRepo *repository.ContributionRepository
	memberRepo  *repository.MemberRepository
	validator   *Validator
	clock       Clock
}

// NewTaskService creates a new TaskService. A nil clock means SystemClock.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	eventRepo *repository.TaskEventRepository,
	contribRepo *repository.ContributionRepository,
	memberRepo *repository.MemberRepository,
	clock Clock,
) *TaskService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TaskService{
		pool:        pool,
		taskRepo:    taskRepo,
		eventRepo:   eventRepo,
		contribRepo: contribRepo,
		memberRepo:  memberRepo,
		validator:   NewValidator(),
		clock:       clock,
	}
}

// CreateStandardParams holds the fields of a new standard task.
type CreateStandardParams struct {
	Category       domain.TaskCategory
	Tier           int
	Quantity       int
	Tip            int
	Description    string
	DeliveryMethod string
	ExpiresAt      *time.Time
}

// CreateCommunityParams holds the fields of a new community task.
type CreateCommunityParams struct {
	Category              domain.TaskCategory
	Tier                  int
	TotalNeeded           int64
	PotSize               int64
	Tip                   int
	DropLocation          string
	Description           string
	ExpiresAt             *time.Time
	RecurringDefinitionID *string
}

// CommunityPayout is the outcome of completing a community task.
type CommunityPayout struct {
	Task     *domain.Task
	Shares   []payout.Share
	XPAwards map[int64]int
}

// rankUp is a rank boundary crossed inside a transaction, logged after commit.
type rankUp struct {
	userID int64
	rank   int
}

// effects collects side effects that are reported only once the transaction commits.
type effects struct {
	rankUps []rankUp
}

// withTx runs fn in a transaction and commits if it returns nil.
func (s *TaskService) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateStandard creates a standard task in UNAPPROVED status.
func (s *TaskService) CreateStandard(ctx context.Context, actor domain.Actor, p CreateStandardParams) (*domain.Task, error) {
	if err := s.validator.ValidateStandard(p); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Kind:           domain.TaskKindStandard,
		Category:       p.Category,
		Tier:           p.Tier,
		Quantity:       p.Quantity,
		Tip:            p.Tip,
		Description:    p.Description,
		DeliveryMethod: p.DeliveryMethod,
		CreatedBy:      actor.UserID,
		Status:         domain.TaskStatusUnapproved,
		ExpiresAt:      p.ExpiresAt,
		CreatedAt:      s.clock.Now(),
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return s.insertTask(ctx, tx, task, &actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"kind", task.Kind,
		"category", task.Category,
		"actor_id", actor.UserID,
	)

	return task, nil
}

// CreateCommunity creates a community task directly in APPROVED status.
func (s *TaskService) CreateCommunity(ctx context.Context, actor domain.Actor, p CreateCommunityParams) (*domain.Task, error) {
	if err := s.validator.CanCreateCommunity(actor); err != nil {
		return nil, err
	}
	if p.Category == "" {
		p.Category = domain.TaskCategoryCommunity
	}
	if err := s.validator.ValidateCommunity(p); err != nil {
		return nil, err
	}

	task := newCommunityTask(actor.UserID, p, s.clock.Now())
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return s.insertTask(ctx, tx, task, &actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"kind", task.Kind,
		"pot_size", task.PotSize,
		"actor_id", actor.UserID,
	)

	return task, nil
}

func newCommunityTask(createdBy int64, p CreateCommunityParams, now time.Time) *domain.Task {
	return &domain.Task{
		Kind:                  domain.TaskKindCommunity,
		Category:              p.Category,
		Tier:                  p.Tier,
		Tip:                   p.Tip,
		TotalNeeded:           p.TotalNeeded,
		PotSize:               p.PotSize,
		DropLocation:          p.DropLocation,
		Description:           p.Description,
		CreatedBy:             createdBy,
		Status:                domain.TaskStatusApproved,
		ExpiresAt:             p.ExpiresAt,
		RecurringDefinitionID: p.RecurringDefinitionID,
		CreatedAt:             now,
		Contributions:         map[int64]int64{},
	}
}

// insertTask stores a new task and its created event. A nil actorID marks a system creation.
func (s *TaskService) insertTask(ctx context.Context, tx pgx.Tx, task *domain.Task, actorID *int64) error {
	if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
		return err
	}

	if actorID != nil {
		if err := s.memberRepo.Increment(ctx, tx, *actorID, repository.CounterTasksCreated); err != nil {
			return err
		}
	}

	newStatus := task.Status
	event := &domain.TaskEvent{
		TaskID:    task.ID,
		ActorID:   actorID,
		Type:      domain.EventTypeCreated,
		NewStatus: &newStatus,
		CreatedAt: task.CreatedAt,
	}
	if err := s.eventRepo.Append(ctx, tx, event); err != nil {
		return err
	}
	return nil
}

// transition locks the task, runs check, moves it to newStatus, applies mutate
// and writes the event. Side effects are logged after commit.
func (s *TaskService) transition(
	ctx context.Context,
	taskID int64,
	actorID *int64,
	eventType domain.EventType,
	newStatus domain.TaskStatus,
	check func(task *domain.Task) error,
	mutate func(ctx context.Context, tx pgx.Tx, task *domain.Task, now time.Time, fx *effects) error,
) (*domain.Task, error) {
	var (
		result    *domain.Task
		oldStatus domain.TaskStatus
		fx        effects
	)

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := check(task); err != nil {
			return err
		}

		now := s.clock.Now()
		oldStatus = task.Status
		task.Status = newStatus
		task.UpdatedAt = now
		if ShouldClearClaimant(newStatus) {
			task.ClaimedBy = nil
		}
		if mutate != nil {
			if err := mutate(ctx, tx, task, now, &fx); err != nil {
				return err
			}
		}

		if err := s.taskRepo.Update(ctx, tx, task, oldStatus); err != nil {
			return err
		}

		event := &domain.TaskEvent{
			TaskID:    task.ID,
			ActorID:   actorID,
			Type:      eventType,
			OldStatus: &oldStatus,
			NewStatus: &newStatus,
			CreatedAt: now,
		}
		if err := s.eventRepo.Append(ctx, tx, event); err != nil {
			return err
		}

		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{
		"task_id", taskID,
		"old_status", oldStatus,
		"new_status", newStatus,
	}
	if actorID != nil {
		attrs = append(attrs, "actor_id", *actorID)
	}
	slog.Info("task "+string(eventType), attrs...)
	logRankUps(fx.rankUps)

	return result, nil
}

// Approve moves an UNAPPROVED task to APPROVED.
func (s *TaskService) Approve(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeApproved, domain.TaskStatusApproved,
		func(task *domain.Task) error { return s.validator.CanApprove(task, actor) },
		nil,
	)
}

// Decline moves an UNAPPROVED task straight to EXPIRED.
func (s *TaskService) Decline(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeDeclined, domain.TaskStatusExpired,
		func(task *domain.Task) error { return s.validator.CanDecline(task, actor) },
		markExpired,
	)
}

// Claim assigns an APPROVED standard task to the actor.
func (s *TaskService) Claim(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeClaimed, domain.TaskStatusClaimed,
		func(task *domain.Task) error { return s.validator.CanClaim(task, actor) },
		func(ctx context.Context, tx pgx.Tx, task *domain.Task, _ time.Time, _ *effects) error {
			claimant := actor.UserID
			task.ClaimedBy = &claimant
			return s.memberRepo.Increment(ctx, tx, claimant, repository.CounterTasksClaimed)
		},
	)
}

// Abandon returns a CLAIMED task to the pool.
func (s *TaskService) Abandon(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeAbandoned, domain.TaskStatusApproved,
		func(task *domain.Task) error { return s.validator.CanAbandon(task, actor) },
		nil,
	)
}

// Complete marks a CLAIMED task as delivered and awaiting review.
func (s *TaskService) Complete(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeCompleted, domain.TaskStatusPending,
		func(task *domain.Task) error { return s.validator.CanComplete(task, actor) },
		func(_ context.Context, _ pgx.Tx, task *domain.Task, now time.Time, _ *effects) error {
			setOnce(&task.CompletedAt, now)
			return nil
		},
	)
}

// Verify confirms a PENDING task and grants the doubled XP to its claimant.
func (s *TaskService) Verify(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeVerified, domain.TaskStatusVerified,
		func(task *domain.Task) error { return s.validator.CanVerify(task, actor) },
		func(ctx context.Context, tx pgx.Tx, task *domain.Task, now time.Time, fx *effects) error {
			task.Verified = true
			setOnce(&task.VerifiedAt, now)
			return s.grantTaskXP(ctx, tx, task, fx)
		},
	)
}

// Close finalizes a PENDING or VERIFIED standard task. XP not granted yet is granted now.
func (s *TaskService) Close(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeClosed, domain.TaskStatusClosed,
		func(task *domain.Task) error { return s.validator.CanClose(task, actor) },
		func(ctx context.Context, tx pgx.Tx, task *domain.Task, now time.Time, fx *effects) error {
			setOnce(&task.ClosedAt, now)
			if err := s.grantTaskXP(ctx, tx, task, fx); err != nil {
				return err
			}
			if task.ClaimedBy == nil {
				return nil
			}
			return s.memberRepo.Increment(ctx, tx, *task.ClaimedBy, repository.CounterTasksCompleted)
		},
	)
}

// Expire finalizes any non-terminal task on behalf of its creator or an officer.
func (s *TaskService) Expire(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error) {
	return s.transition(ctx, taskID, &actor.UserID, domain.EventTypeExpired, domain.TaskStatusExpired,
		func(task *domain.Task) error { return s.validator.CanExpire(task, actor) },
		markExpired,
	)
}

// expireAsSystem finalizes a task whose deadline has passed. The event has no actor.
func (s *TaskService) expireAsSystem(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.transition(ctx, taskID, nil, domain.EventTypeExpired, domain.TaskStatusExpired,
		func(task *domain.Task) error {
			if task.IsFinalized() {
				return fmt.Errorf("%w: task %d is already %s", domain.ErrInvalidTransition, task.ID, task.Status)
			}
			return nil
		},
		markExpired,
	)
}

func markExpired(_ context.Context, _ pgx.Tx, task *domain.Task, now time.Time, _ *effects) error {
	setOnce(&task.ExpiredAt, now)
	return nil
}

// setOnce stamps a transition timestamp unless it was already set.
func setOnce(field **time.Time, now time.Time) {
	if *field == nil {
		t := now
		*field = &t
	}
}

// grantTaskXP awards a standard task's XP to its claimant unless it was already awarded.
func (s *TaskService) grantTaskXP(ctx context.Context, tx pgx.Tx, task *domain.Task, fx *effects) error {
	if task.XPAwarded != nil || task.ClaimedBy == nil {
		return nil
	}
	xp := progression.CalculateXP(task.Tier, task.Quantity, task.Tip, task.Verified)
	task.XPAwarded = &xp
	return s.gainXP(ctx, tx, *task.ClaimedBy, xp, fx)
}

func (s *TaskService) gainXP(ctx context.Context, tx pgx.Tx, userID int64, xp int, fx *effects) error {
	if xp == 0 {
		return nil
	}
	oldXP, newXP, err := s.memberRepo.GainXP(ctx, tx, userID, xp)
	if err != nil {
		return err
	}
	for _, r := range progression.RanksCrossed(oldXP, newXP) {
		fx.rankUps = append(fx.rankUps, rankUp{userID: userID, rank: r})
	}
	return nil
}

func logRankUps(ups []rankUp) {
	for _, up := range ups {
		slog.Info("rank up",
			"user_id", up.userID,
			"rank", up.rank,
			"role", progression.RoleForRank(up.rank),
			"reward", progression.RewardForRank(up.rank),
		)
	}
}

// RecordContribution adds amount to userID's contribution on a community task.
// Each call is a distinct delivery; repeated calls accumulate.
func (s *TaskService) RecordContribution(ctx context.Context, taskID, userID, amount int64) (*domain.Task, error) {
	var result *domain.Task

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.IsCommunity() {
			if task.Contributions, err = s.contribRepo.Totals(ctx, tx, task.ID); err != nil {
				return err
			}
		}
		if err := s.validator.CanRecordContribution(task, amount); err != nil {
			return err
		}

		now := s.clock.Now()
		entry := &domain.Contribution{
			TaskID:     task.ID,
			UserID:     userID,
			Amount:     amount,
			RecordedAt: now,
		}
		if err := s.contribRepo.Create(ctx, tx, entry); err != nil {
			return err
		}
		if err := s.memberRepo.AddContribution(ctx, tx, userID, amount); err != nil {
			return err
		}

		task.UpdatedAt = now
		if err := s.taskRepo.Update(ctx, tx, task, task.Status); err != nil {
			return err
		}

		event := &domain.TaskEvent{
			TaskID:    task.ID,
			ActorID:   &userID,
			Type:      domain.EventTypeContribution,
			Comment:   fmt.Sprintf("contributed %d", amount),
			CreatedAt: now,
		}
		if err := s.eventRepo.Append(ctx, tx, event); err != nil {
			return err
		}

		task.Contributions, err = s.contribRepo.Totals(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("contribution recorded",
		"task_id", taskID,
		"user_id", userID,
		"amount", amount,
		"total", result.TotalContributed(),
	)

	return result, nil
}

// CompleteCommunity closes a community task, pays out the pot proportionally
// and grants each contributor XP for their share of the work. The contribution
// snapshot is read under the task lock, so no contribution can slip in between.
func (s *TaskService) CompleteCommunity(ctx context.Context, taskID int64, actor domain.Actor) (*CommunityPayout, error) {
	var (
		result    *CommunityPayout
		oldStatus domain.TaskStatus
		fx        effects
	)

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := s.validator.CanCompleteCommunity(task, actor); err != nil {
			return err
		}

		totals, err := s.contribRepo.Totals(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		task.Contributions = totals

		amounts, err := payout.Distribute(task.PotSize, totals)
		if err != nil {
			return fmt.Errorf("distribute pot of task %d: %w", task.ID, err)
		}
		shares := payout.Ordered(amounts, totals)

		xpAwards := make(map[int64]int, len(shares))
		for _, share := range shares {
			if share.Amount > 0 {
				if err := s.memberRepo.AwardCurrency(ctx, tx, share.UserID, share.Amount); err != nil {
					return err
				}
			}
			xp := progression.CalculateXP(task.Tier, int(share.Contributed), task.Tip, false)
			if err := s.gainXP(ctx, tx, share.UserID, xp, &fx); err != nil {
				return err
			}
			xpAwards[share.UserID] = xp
		}

		now := s.clock.Now()
		oldStatus = task.Status
		task.Status = domain.TaskStatusClosed
		task.UpdatedAt = now
		setOnce(&task.CompletedAt, now)
		setOnce(&task.ClosedAt, now)
		if err := s.taskRepo.Update(ctx, tx, task, oldStatus); err != nil {
			return err
		}

		newStatus := task.Status
		events := []*domain.TaskEvent{
			{
				TaskID:    task.ID,
				ActorID:   &actor.UserID,
				Type:      domain.EventTypeClosed,
				OldStatus: &oldStatus,
				NewStatus: &newStatus,
				CreatedAt: now,
			},
			{
				TaskID:    task.ID,
				ActorID:   &actor.UserID,
				Type:      domain.EventTypePayout,
				Comment:   fmt.Sprintf("paid %d to %d contributors", task.PotSize, len(shares)),
				CreatedAt: now,
			},
		}
		if len(shares) == 0 {
			events[1].Comment = "no contributors, nothing paid"
		}
		if err := s.eventRepo.Append(ctx, tx, events...); err != nil {
			return err
		}

		result = &CommunityPayout{Task: task, Shares: shares, XPAwards: xpAwards}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("community task completed",
		"task_id", taskID,
		"actor_id", actor.UserID,
		"old_status", oldStatus,
		"pot_size", result.Task.PotSize,
		"contributors", len(result.Shares),
	)
	logRankUps(fx.rankUps)

	return result, nil
}

// Delete physically removes a task. Allowed while UNAPPROVED, or by its creator.
func (s *TaskService) Delete(ctx context.Context, taskID int64, actor domain.Actor) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := s.validator.CanDelete(task, actor); err != nil {
			return err
		}
		return s.taskRepo.Delete(ctx, tx, taskID)
	})
	if err != nil {
		return err
	}

	slog.Info("task deleted", "task_id", taskID, "actor_id", actor.UserID)
	return nil
}

// ClearAll removes every task. Administrative only; the caller checks the capability.
func (s *TaskService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.taskRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	slog.Warn("all tasks cleared", "count", n)
	return n, nil
}

// ExpireOverdue expires every non-terminal task whose deadline is at or before now.
// Returns the number of tasks successfully expired, and an error if any failed.
func (s *TaskService) ExpireOverdue(ctx context.Context) (int, error) {
	tasks, err := s.taskRepo.FindOverdue(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("find overdue tasks: %w", err)
	}

	if len(tasks) == 0 {
		slog.Debug("no overdue tasks found")
		return 0, nil
	}

	count := 0
	var errs []error
	for _, task := range tasks {
		if _, err := s.expireAsSystem(ctx, task.ID); err != nil {
			// Lost a race with an interactive transition; the task is already final.
			if domain.IsRejection(err) {
				slog.Debug("overdue task already finalized", "task_id", task.ID, "error", err)
				continue
			}
			slog.Error("failed to expire overdue task",
				"task_id", task.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("task %d: %w", task.ID, err))
			continue
		}
		count++
	}

	slog.Info("processed overdue tasks",
		"total", len(tasks),
		"expired", count,
		"failed", len(errs),
	)

	if len(errs) > 0 {
		return count, fmt.Errorf("expired %d/%d tasks, %d failures: %v",
			count, len(tasks), len(errs), errs)
	}

	return count, nil
}

// GetTask returns a task, with its contribution totals for community tasks.
func (s *TaskService) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCommunity() {
		task.Contributions, err = s.contribRepo.Totals(ctx, s.pool, task.ID)
		if err != nil {
			return nil, err
		}
	}
	return task, nil
}

// ListTasks returns a filtered page of tasks and the total match count.
func (s *TaskService) ListTasks(ctx context.Context, filters repository.TaskListFilters) ([]repository.TaskListResult, int, error) {
	if filters.Now.IsZero() {
		filters.Now = s.clock.Now()
	}
	return s.taskRepo.List(ctx, filters)
}

// TasksByStatus returns the oldest tasks in a status, such as the officers'
// review queue of UNAPPROVED tasks.
func (s *TaskService) TasksByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return s.taskRepo.GetByStatus(ctx, status, limit)
}

// TopContributors returns the n largest contributors of a community task.
func (s *TaskService) TopContributors(ctx context.Context, taskID int64, n int) ([]domain.ContributorTotal, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCommunity() {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotCommunityTask, taskID)
	}
	return s.contribRepo.TopContributors(ctx, taskID, n)
}

// ContributionLog returns every recorded delivery of a community task in order.
func (s *TaskService) ContributionLog(ctx context.Context, taskID int64) ([]*domain.Contribution, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCommunity() {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotCommunityTask, taskID)
	}
	return s.contribRepo.ListByTask(ctx, taskID)
}

// History returns the audit trail of a task in order, optionally restricted
// to the given event types.
func (s *TaskService) History(ctx context.Context, taskID int64, types ...domain.EventType) ([]*domain.TaskEvent, error) {
	for _, t := range types {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidInput, t)
		}
	}
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByTask(ctx, taskID, types...)
}

// PayoutLedger returns the delivery and payout events of a community task.
func (s *TaskService) PayoutLedger(ctx context.Context, taskID int64) ([]*domain.TaskEvent, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCommunity() {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotCommunityTask, taskID)
	}
	return s.eventRepo.ListByTask(ctx, taskID, domain.EventTypeContribution, domain.EventTypePayout)
}
