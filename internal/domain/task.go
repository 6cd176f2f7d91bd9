package domain

import (
	"math"
	"time"
)

// TaskStatus represents the status of a task in the state machine.
type TaskStatus string

const (
	TaskStatusUnapproved TaskStatus = "UNAPPROVED"
	TaskStatusApproved   TaskStatus = "APPROVED"
	TaskStatusClaimed    TaskStatus = "CLAIMED"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusVerified   TaskStatus = "VERIFIED"
	TaskStatusClosed     TaskStatus = "CLOSED"
	TaskStatusExpired    TaskStatus = "EXPIRED"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
// A task in a terminal status is finalized.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusClosed || s == TaskStatusExpired
}

// HoldsClaimant returns true for statuses in which a standard task has a claimant.
func (s TaskStatus) HoldsClaimant() bool {
	return s == TaskStatusClaimed || s == TaskStatusPending || s == TaskStatusVerified
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUnapproved, TaskStatusApproved, TaskStatusClaimed,
		TaskStatusPending, TaskStatusVerified, TaskStatusClosed, TaskStatusExpired:
		return true
	default:
		return false
	}
}

// TaskKind distinguishes single-claimant tasks from multi-contributor ones.
type TaskKind string

const (
	TaskKindStandard  TaskKind = "standard"
	TaskKindCommunity TaskKind = "community"
)

// IsValid checks if the kind is one of the allowed values.
func (k TaskKind) IsValid() bool {
	return k == TaskKindStandard || k == TaskKindCommunity
}

// TaskCategory is the in-game category of a task. The engine does not interpret it.
type TaskCategory string

const (
	TaskCategoryCraftingOrder     TaskCategory = "crafting_order"
	TaskCategoryVehicleOrder      TaskCategory = "vehicle_order"
	TaskCategoryConstructionOrder TaskCategory = "construction_order"
	TaskCategoryResourceDelivery  TaskCategory = "resource_delivery"
	TaskCategoryDeepDesertMap     TaskCategory = "deep_desert_map"
	TaskCategoryExchangeRevenue   TaskCategory = "exchange_revenue"
	TaskCategorySchematicHunt     TaskCategory = "schematic_hunt"
	TaskCategoryEventHost         TaskCategory = "event_host"
	TaskCategoryGroupExpedition   TaskCategory = "group_expedition"
	TaskCategoryScoutReport       TaskCategory = "scout_report"
	TaskCategoryGather            TaskCategory = "gather"
	TaskCategoryCommunity         TaskCategory = "community"
	TaskCategoryRepair            TaskCategory = "repair"
)

// IsValid checks if the category is one of the allowed values.
func (c TaskCategory) IsValid() bool {
	switch c {
	case TaskCategoryCraftingOrder, TaskCategoryVehicleOrder, TaskCategoryConstructionOrder,
		TaskCategoryResourceDelivery, TaskCategoryDeepDesertMap, TaskCategoryExchangeRevenue,
		TaskCategorySchematicHunt, TaskCategoryEventHost, TaskCategoryGroupExpedition,
		TaskCategoryScoutReport, TaskCategoryGather, TaskCategoryCommunity, TaskCategoryRepair:
		return true
	default:
		return false
	}
}

const (
	MinTier = 1
	MaxTier = 6

	// MaxQuantity and MaxTip bound the integer columns of a task.
	MaxQuantity = math.MaxInt32
	MaxTip      = math.MaxInt32

	// MaxContributionTotal caps the sum of all deliveries to one community task.
	MaxContributionTotal int64 = 1_000_000_000_000
)

// Task is a guild task: either a standard task claimed by one member, or a
// community task that any number of members contribute to.
type Task struct {
	ID             int64
	Kind           TaskKind
	Category       TaskCategory
	Tier           int
	Quantity       int
	Description    string
	DeliveryMethod string
	DropLocation   string
	CreatedBy      int64
	ClaimedBy      *int64
	Status         TaskStatus
	Tip            int
	PotSize        int64
	TotalNeeded    int64
	Verified       bool
	XPAwarded      *int
	ExpiresAt      *time.Time

	RecurringDefinitionID *string

	CreatedAt   time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time
	ClosedAt    *time.Time
	ExpiredAt   *time.Time
	UpdatedAt   time.Time

	// Contributions is the per-member sum of the contribution log.
	// Only populated for community tasks, and only by the repository layer.
	Contributions map[int64]int64
}

// IsCommunity reports whether the task is a community task.
func (t *Task) IsCommunity() bool {
	return t.Kind == TaskKindCommunity
}

// IsFinalized reports whether the task has reached a terminal status.
func (t *Task) IsFinalized() bool {
	return t.Status.IsTerminal()
}

// IsClaimedBy checks if the task is claimed by the given member.
func (t *Task) IsClaimedBy(userID int64) bool {
	return t.ClaimedBy != nil && *t.ClaimedBy == userID
}

// IsCreatedBy checks if the task was created by the given member.
func (t *Task) IsCreatedBy(userID int64) bool {
	return t.CreatedBy == userID
}

// TotalContributed returns the sum of all recorded contributions.
func (t *Task) TotalContributed() int64 {
	var total int64
	for _, amount := range t.Contributions {
		total += amount
	}
	return total
}

// IsOverdue reports whether the task has an expiry deadline that has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsFinalized() && t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}
