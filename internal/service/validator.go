package service

import (
	"fmt"

	"github.com/mtlprog/guildtask/internal/domain"
)

// Validator handles permission and state validation for task operations.
// Checks are pure: they look only at the locked task and the actor.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// requireStatus rejects tasks that are finalized or not in one of the allowed statuses.
func requireStatus(task *domain.Task, op string, allowed ...domain.TaskStatus) error {
	if task.IsFinalized() {
		return fmt.Errorf("%w: cannot %s task %d from terminal status %s", domain.ErrInvalidTransition, op, task.ID, task.Status)
	}
	for _, s := range allowed {
		if task.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s task %d in %s status", domain.ErrInvalidTransition, op, task.ID, task.Status)
}

func requireStandard(task *domain.Task, op string) error {
	if task.IsCommunity() {
		return fmt.Errorf("%w: cannot %s community task %d", domain.ErrInvalidTransition, op, task.ID)
	}
	return nil
}

// CanApprove validates UNAPPROVED -> APPROVED.
func (v *Validator) CanApprove(task *domain.Task, actor domain.Actor) error {
	if err := requireStatus(task, "approve", domain.TaskStatusUnapproved); err != nil {
		return err
	}
	return canReview(task, actor, "approve")
}

// CanDecline validates UNAPPROVED -> EXPIRED.
func (v *Validator) CanDecline(task *domain.Task, actor domain.Actor) error {
	if err := requireStatus(task, "decline", domain.TaskStatusUnapproved); err != nil {
		return err
	}
	return canReview(task, actor, "decline")
}

// canReview: a creator never reviews their own task, even as an officer.
func canReview(task *domain.Task, actor domain.Actor, op string) error {
	if task.IsCreatedBy(actor.UserID) {
		return fmt.Errorf("%w: member %d cannot %s own task %d", domain.ErrPermissionDenied, actor.UserID, op, task.ID)
	}
	if !actor.CanModerate() {
		return fmt.Errorf("%w: member %d is not an officer", domain.ErrPermissionDenied, actor.UserID)
	}
	return nil
}

// CanClaim validates APPROVED -> CLAIMED.
func (v *Validator) CanClaim(task *domain.Task, actor domain.Actor) error {
	if err := requireStandard(task, "claim"); err != nil {
		return err
	}
	if err := requireStatus(task, "claim", domain.TaskStatusApproved); err != nil {
		return err
	}
	if task.IsCreatedBy(actor.UserID) {
		return fmt.Errorf("%w: member %d cannot claim own task %d", domain.ErrPermissionDenied, actor.UserID, task.ID)
	}
	return nil
}

// CanAbandon validates CLAIMED -> APPROVED.
func (v *Validator) CanAbandon(task *domain.Task, actor domain.Actor) error {
	if err := requireStatus(task, "abandon", domain.TaskStatusClaimed); err != nil {
		return err
	}
	return requireClaimant(task, actor)
}

// CanComplete validates CLAIMED -> PENDING.
func (v *Validator) CanComplete(task *domain.Task, actor domain.Actor) error {
	if err := requireStatus(task, "complete", domain.TaskStatusClaimed); err != nil {
		return err
	}
	return requireClaimant(task, actor)
}

func requireClaimant(task *domain.Task, actor domain.Actor) error {
	if !task.IsClaimedBy(actor.UserID) {
		return fmt.Errorf("%w: %w: member %d on task %d", domain.ErrPermissionDenied, domain.ErrNotTaskClaimant, actor.UserID, task.ID)
	}
	return nil
}

// CanVerify validates PENDING -> VERIFIED.
func (v *Validator) CanVerify(task *domain.Task, actor domain.Actor) error {
	if err := requireStandard(task, "verify"); err != nil {
		return err
	}
	if err := requireStatus(task, "verify", domain.TaskStatusPending); err != nil {
		return err
	}
	if !task.IsCreatedBy(actor.UserID) && !actor.CanModerate() {
		return fmt.Errorf("%w: member %d is neither creator nor officer of task %d", domain.ErrPermissionDenied, actor.UserID, task.ID)
	}
	return nil
}

// CanClose validates PENDING|VERIFIED -> CLOSED for standard tasks.
func (v *Validator) CanClose(task *domain.Task, actor domain.Actor) error {
	if err := requireStandard(task, "close"); err != nil {
		return err
	}
	if err := requireStatus(task, "close", domain.TaskStatusPending, domain.TaskStatusVerified); err != nil {
		return err
	}
	if !task.IsCreatedBy(actor.UserID) && !actor.IsOwnerOrAdmin() {
		return fmt.Errorf("%w: %w: member %d on task %d", domain.ErrPermissionDenied, domain.ErrNotTaskCreator, actor.UserID, task.ID)
	}
	return nil
}

// CanExpire validates any non-terminal status -> EXPIRED.
func (v *Validator) CanExpire(task *domain.Task, actor domain.Actor) error {
	if task.IsFinalized() {
		return fmt.Errorf("%w: task %d is already %s", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	if !task.IsCreatedBy(actor.UserID) && !actor.CanModerate() {
		return fmt.Errorf("%w: member %d is neither creator nor officer of task %d", domain.ErrPermissionDenied, actor.UserID, task.ID)
	}
	return nil
}

// CanDelete allows removal while UNAPPROVED, or at any time by the creator.
func (v *Validator) CanDelete(task *domain.Task, actor domain.Actor) error {
	if task.Status == domain.TaskStatusUnapproved || task.IsCreatedBy(actor.UserID) {
		return nil
	}
	return fmt.Errorf("%w: %w: member %d cannot delete task %d in %s status",
		domain.ErrPermissionDenied, domain.ErrNotTaskCreator, actor.UserID, task.ID, task.Status)
}

// CanCreateCommunity requires the officer-or-owner capability.
func (v *Validator) CanCreateCommunity(actor domain.Actor) error {
	if !actor.CanModerate() {
		return fmt.Errorf("%w: member %d cannot post community tasks", domain.ErrPermissionDenied, actor.UserID)
	}
	return nil
}

// CanRecordContribution checks kind, then amount, then finalization, then the
// running total held in task.Contributions.
func (v *Validator) CanRecordContribution(task *domain.Task, amount int64) error {
	if !task.IsCommunity() {
		return fmt.Errorf("%w: task %d", domain.ErrNotCommunityTask, task.ID)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", domain.ErrInvalidAmount, amount)
	}
	if amount > domain.MaxContributionTotal {
		return fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidAmount, amount, domain.MaxContributionTotal)
	}
	if task.IsFinalized() {
		return fmt.Errorf("%w: task %d is %s", domain.ErrTaskFinalized, task.ID, task.Status)
	}
	if total := task.TotalContributed(); total > domain.MaxContributionTotal-amount {
		return fmt.Errorf("%w: task %d already holds %d, cap is %d",
			domain.ErrInvalidAmount, task.ID, total, domain.MaxContributionTotal)
	}
	return nil
}

// CanCompleteCommunity validates APPROVED -> CLOSED for community tasks.
func (v *Validator) CanCompleteCommunity(task *domain.Task, actor domain.Actor) error {
	if !task.IsCommunity() {
		return fmt.Errorf("%w: task %d", domain.ErrNotCommunityTask, task.ID)
	}
	if err := requireStatus(task, "complete", domain.TaskStatusApproved); err != nil {
		return err
	}
	if !actor.CanModerate() {
		return fmt.Errorf("%w: member %d cannot complete community task %d", domain.ErrPermissionDenied, actor.UserID, task.ID)
	}
	return nil
}

// ValidateStandard checks the fields of a new standard task.
func (v *Validator) ValidateStandard(p CreateStandardParams) error {
	if err := validateClassification(p.Category, p.Tier); err != nil {
		return err
	}
	if p.Quantity < 0 || p.Quantity > domain.MaxQuantity {
		return fmt.Errorf("%w: quantity %d not in 0..%d", domain.ErrInvalidInput, p.Quantity, domain.MaxQuantity)
	}
	return validateTip(p.Tip)
}

// ValidateCommunity checks the fields of a new community task.
func (v *Validator) ValidateCommunity(p CreateCommunityParams) error {
	if err := validateClassification(p.Category, p.Tier); err != nil {
		return err
	}
	if p.PotSize < 0 {
		return fmt.Errorf("%w: pot size must not be negative", domain.ErrInvalidInput)
	}
	if p.TotalNeeded < 0 || p.TotalNeeded > domain.MaxContributionTotal {
		return fmt.Errorf("%w: total needed %d not in 0..%d", domain.ErrInvalidInput, p.TotalNeeded, domain.MaxContributionTotal)
	}
	return validateTip(p.Tip)
}

func validateTip(tip int) error {
	if tip < 0 || tip > domain.MaxTip {
		return fmt.Errorf("%w: tip %d not in 0..%d", domain.ErrInvalidInput, tip, domain.MaxTip)
	}
	return nil
}

func validateClassification(category domain.TaskCategory, tier int) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}
	if tier < domain.MinTier || tier > domain.MaxTier {
		return fmt.Errorf("%w: %d not in %d..%d", domain.ErrInvalidTier, tier, domain.MinTier, domain.MaxTier)
	}
	return nil
}
