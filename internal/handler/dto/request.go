package dto

import "time"

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Category       string     `json:"category"`
	Tier           int        `json:"tier"`
	Quantity       int        `json:"quantity"`
	Tip            int        `json:"tip,omitempty"`
	Description    string     `json:"description,omitempty"`
	DeliveryMethod string     `json:"delivery_method,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// CreateCommunityTaskRequest represents the request body for POST /community-tasks.
type CreateCommunityTaskRequest struct {
	Category     string     `json:"category,omitempty"`
	Tier         int        `json:"tier"`
	TotalNeeded  int64      `json:"total_needed"`
	PotSize      int64      `json:"pot_size"`
	Tip          int        `json:"tip,omitempty"`
	DropLocation string     `json:"drop_location,omitempty"`
	Description  string     `json:"description,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// RecordContributionRequest represents the request body for POST /tasks/:id/contributions.
type RecordContributionRequest struct {
	UserID int64 `json:"user_id"`
	Amount int64 `json:"amount"`
}

// ListTasksFilters represents query parameters for GET /tasks.
type ListTasksFilters struct {
	Status    []string // Multiple statuses: ?status=APPROVED,CLAIMED
	Kind      *string  // ?kind=community
	Category  *string  // ?category=gather
	CreatedBy *int64   // ?created_by=<id> or ?created_by=me
	ClaimedBy *int64   // ?claimed_by=<id> or ?claimed_by=me
	Overdue   bool     // ?overdue=true
	Sort      []string // ?sort=-tier,created_at
	Limit     int      // ?limit=50
	Offset    int      // ?offset=0
}

// StatsFilters represents query parameters for GET /stats.
type StatsFilters struct {
	Period string // day, week, month, all
	UserID *int64 // Filter by specific member
}
