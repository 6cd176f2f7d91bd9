package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/repository"
)

// SweepResult summarizes one scheduler pass.
type SweepResult struct {
	Spawned int
	Expired int
}

// Scheduler posts due recurring community tasks and expires overdue ones.
type Scheduler struct {
	tasks         *TaskService
	recurringRepo *repository.RecurringRepository
	systemActorID int64
}

// NewScheduler creates a new Scheduler. Spawned tasks are created by systemActorID.
func NewScheduler(tasks *TaskService, recurringRepo *repository.RecurringRepository, systemActorID int64) *Scheduler {
	return &Scheduler{
		tasks:         tasks,
		recurringRepo: recurringRepo,
		systemActorID: systemActorID,
	}
}

// RunOnce performs one sweep: spawn due recurring tasks, then expire overdue tasks.
// It keeps going past individual failures and reports them joined.
func (s *Scheduler) RunOnce(ctx context.Context) (SweepResult, error) {
	var (
		result SweepResult
		errs   []error
	)

	spawned, err := s.spawnDue(ctx)
	result.Spawned = spawned
	if err != nil {
		errs = append(errs, err)
	}

	expired, err := s.tasks.ExpireOverdue(ctx)
	result.Expired = expired
	if err != nil {
		errs = append(errs, err)
	}

	return result, errors.Join(errs...)
}

// Run calls RunOnce every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	slog.Info("scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if result, err := s.RunOnce(ctx); err != nil {
			slog.Error("scheduler sweep failed", "error", err)
		} else if result.Spawned > 0 || result.Expired > 0 {
			slog.Info("scheduler sweep completed",
				"spawned", result.Spawned,
				"expired", result.Expired,
			)
		}

		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) spawnDue(ctx context.Context) (int, error) {
	defs, err := s.recurringRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring definitions: %w", err)
	}

	now := s.tasks.clock.Now()
	count := 0
	var errs []error
	for _, def := range defs {
		if !def.IsDue(now) {
			continue
		}
		task, err := s.spawn(ctx, def, now)
		if err != nil {
			slog.Error("failed to spawn recurring task",
				"definition_id", def.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("definition %s: %w", def.ID, err))
			continue
		}
		slog.Info("recurring task spawned",
			"definition_id", def.ID,
			"task_id", task.ID,
			"frequency", def.Frequency,
		)
		count++
	}

	return count, errors.Join(errs...)
}

// spawn creates the community task for def and marks the definition run in one transaction.
func (s *Scheduler) spawn(ctx context.Context, def *domain.RecurringDefinition, now time.Time) (*domain.Task, error) {
	defID := def.ID
	task := newCommunityTask(s.systemActorID, CreateCommunityParams{
		Category:              def.Category,
		Tier:                  def.Tier,
		TotalNeeded:           def.TotalNeeded,
		PotSize:               def.PotSize,
		DropLocation:          def.DropLocation,
		Description:           def.Description,
		ExpiresAt:             CalculateExpiry(now, def.ExpireAfterHours),
		RecurringDefinitionID: &defID,
	}, now)

	err := s.tasks.withTx(ctx, func(tx pgx.Tx) error {
		if err := s.tasks.insertTask(ctx, tx, task, nil); err != nil {
			return err
		}
		return s.recurringRepo.MarkRun(ctx, tx, def.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
