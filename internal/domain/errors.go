package domain

import "errors"

// Domain-specific errors for business logic validation.
// Anything returned by the service layer that does not match one of these
// is an infrastructure failure.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTaskFinalized     = errors.New("task is finalized")
	ErrNotCommunityTask  = errors.New("not a community task")
	ErrIDConflict        = errors.New("task id allocation conflict")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotTaskClaimant  = errors.New("not task claimant")
	ErrNotTaskCreator   = errors.New("not task creator")

	// Member errors
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidToken   = errors.New("invalid authentication token")

	// Recurring definition errors
	ErrDefinitionNotFound = errors.New("recurring definition not found")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidAmount   = errors.New("invalid contribution amount")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidTier     = errors.New("invalid task tier")
	ErrInvalidCategory = errors.New("invalid task category")
)

// IsRejection reports whether err is a business-rule rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrTaskNotFound, ErrInvalidTransition, ErrTaskFinalized, ErrNotCommunityTask,
		ErrPermissionDenied, ErrNotTaskClaimant, ErrNotTaskCreator, ErrMemberNotFound,
		ErrInvalidInput, ErrInvalidAmount, ErrInvalidStatus, ErrInvalidTier, ErrInvalidCategory,
		ErrDefinitionNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
