package service

import (
	"time"

	"github.com/mtlprog/guildtask/internal/domain"
)

// CalculateExpiry returns the expiry deadline hours after now.
// Returns nil for non-positive hours (no deadline).
func CalculateExpiry(now time.Time, hours int) *time.Time {
	if hours <= 0 {
		return nil
	}
	deadline := now.Add(time.Duration(hours) * time.Hour)
	return &deadline
}

// ShouldClearClaimant returns true if the transition requires clearing the claimant.
// Going back to APPROVED returns the task to the pool.
func ShouldClearClaimant(newStatus domain.TaskStatus) bool {
	return newStatus == domain.TaskStatusApproved
}
