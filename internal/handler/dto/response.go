package dto

import (
	"time"

	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/payout"
	"github.com/mtlprog/guildtask/internal/service"
)

// TaskListResponse represents a task in the list view (without description and events).
type TaskListResponse struct {
	ID          int64      `json:"id"`
	Kind        string     `json:"kind"`
	Category    string     `json:"category"`
	Tier        int        `json:"tier"`
	Status      string     `json:"status"`
	CreatedBy   int64      `json:"created_by"`
	ClaimedBy   *int64     `json:"claimed_by"`
	PotSize     int64      `json:"pot_size,omitempty"`
	TotalNeeded int64      `json:"total_needed,omitempty"`
	IsOverdue   bool       `json:"is_overdue"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks  []TaskListResponse `json:"tasks"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// TaskDetailResponse represents full task details with events.
type TaskDetailResponse struct {
	Task   TaskDetail          `json:"task"`
	Events []TaskEventResponse `json:"events"`
}

// TaskDetail represents the full task object.
type TaskDetail struct {
	ID               int64           `json:"id"`
	Kind             string          `json:"kind"`
	Category         string          `json:"category"`
	Tier             int             `json:"tier"`
	Quantity         int             `json:"quantity"`
	Description      string          `json:"description"`
	DeliveryMethod   string          `json:"delivery_method,omitempty"`
	DropLocation     string          `json:"drop_location,omitempty"`
	Status           string          `json:"status"`
	CreatedBy        int64           `json:"created_by"`
	ClaimedBy        *int64          `json:"claimed_by"`
	Tip              int             `json:"tip"`
	PotSize          int64           `json:"pot_size"`
	TotalNeeded      int64           `json:"total_needed"`
	TotalContributed int64           `json:"total_contributed"`
	Contributions    map[int64]int64 `json:"contributions,omitempty"`
	Verified         bool            `json:"verified"`
	XPAwarded        *int            `json:"xp_awarded"`
	IsOverdue        bool            `json:"is_overdue"`
	ExpiresAt        *time.Time      `json:"expires_at"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
	VerifiedAt       *time.Time      `json:"verified_at"`
	ClosedAt         *time.Time      `json:"closed_at"`
	ExpiredAt        *time.Time      `json:"expired_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TaskEventResponse represents a single task event.
type TaskEventResponse struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Type      string    `json:"type"`
	ActorID   *int64    `json:"actor_id"`
	OldStatus *string   `json:"old_status"`
	NewStatus *string   `json:"new_status"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ContributorResponse is one row of a community task's contributor ranking.
type ContributorResponse struct {
	UserID int64 `json:"user_id"`
	Amount int64 `json:"amount"`
}

// ContributionEntryResponse is a single recorded delivery.
type ContributionEntryResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Amount     int64     `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ShareResponse is one contributor's payout.
type ShareResponse struct {
	UserID      int64 `json:"user_id"`
	Contributed int64 `json:"contributed"`
	Amount      int64 `json:"amount"`
	XP          int   `json:"xp"`
}

// PayoutResponse represents the result of completing a community task.
type PayoutResponse struct {
	Task   TaskDetail      `json:"task"`
	Shares []ShareResponse `json:"shares"`
}

// MemberResponse represents a member profile.
type MemberResponse struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	XP             int    `json:"xp"`
	Rank           int    `json:"rank"`
	XPToNextRank   int    `json:"xp_to_next_rank"`
	Role           string `json:"role,omitempty"`
	Reward         string `json:"reward"`
	Balance        int64  `json:"balance"`
	TotalEarned    int64  `json:"total_earned"`
	TotalContrib   int64  `json:"total_contributed"`
	TasksCreated   int    `json:"tasks_created"`
	TasksClaimed   int    `json:"tasks_claimed"`
	TasksCompleted int    `json:"tasks_completed"`
}

// LeaderboardResponse represents the response for GET /leaderboard.
type LeaderboardResponse struct {
	Members []MemberResponse `json:"members"`
}

// StatsResponse represents guild statistics.
type StatsResponse struct {
	Period      string        `json:"period"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	Members     []MemberStats `json:"members"`
	Guild       GuildStats    `json:"guild"`
}

// MemberStats represents task statistics for a single member.
type MemberStats struct {
	UserID          int64  `json:"user_id"`
	Username        string `json:"username"`
	TasksCompleted  int    `json:"tasks_completed"`
	TasksExpired    int    `json:"tasks_expired"`
	TasksInProgress int    `json:"tasks_in_progress"`
	Contributed     int64  `json:"contributed"`
}

// GuildStats represents overall task statistics.
type GuildStats struct {
	TotalTasksCreated     int            `json:"total_tasks_created"`
	TasksByStatus         map[string]int `json:"tasks_by_status"`
	TasksByKind           map[string]int `json:"tasks_by_kind"`
	OverdueCount          int            `json:"overdue_count"`
	PotOutstanding        int64          `json:"pot_outstanding"`
	CompletionRatePercent float64        `json:"completion_rate_percent"`
}

// ToTaskListResponse converts domain.Task to TaskListResponse.
func ToTaskListResponse(task *domain.Task, isOverdue bool) TaskListResponse {
	return TaskListResponse{
		ID:          task.ID,
		Kind:        string(task.Kind),
		Category:    string(task.Category),
		Tier:        task.Tier,
		Status:      string(task.Status),
		CreatedBy:   task.CreatedBy,
		ClaimedBy:   task.ClaimedBy,
		PotSize:     task.PotSize,
		TotalNeeded: task.TotalNeeded,
		IsOverdue:   isOverdue,
		ExpiresAt:   task.ExpiresAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDetail converts domain.Task to TaskDetail.
func ToTaskDetail(task *domain.Task, now time.Time) TaskDetail {
	return TaskDetail{
		ID:               task.ID,
		Kind:             string(task.Kind),
		Category:         string(task.Category),
		Tier:             task.Tier,
		Quantity:         task.Quantity,
		Description:      task.Description,
		DeliveryMethod:   task.DeliveryMethod,
		DropLocation:     task.DropLocation,
		Status:           string(task.Status),
		CreatedBy:        task.CreatedBy,
		ClaimedBy:        task.ClaimedBy,
		Tip:              task.Tip,
		PotSize:          task.PotSize,
		TotalNeeded:      task.TotalNeeded,
		TotalContributed: task.TotalContributed(),
		Contributions:    task.Contributions,
		Verified:         task.Verified,
		XPAwarded:        task.XPAwarded,
		IsOverdue:        task.IsOverdue(now),
		ExpiresAt:        task.ExpiresAt,
		CreatedAt:        task.CreatedAt,
		CompletedAt:      task.CompletedAt,
		VerifiedAt:       task.VerifiedAt,
		ClosedAt:         task.ClosedAt,
		ExpiredAt:        task.ExpiredAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

// ToTaskEventResponse converts domain.TaskEvent to TaskEventResponse.
func ToTaskEventResponse(event *domain.TaskEvent) TaskEventResponse {
	var oldStatus, newStatus *string
	if event.OldStatus != nil {
		s := string(*event.OldStatus)
		oldStatus = &s
	}
	if event.NewStatus != nil {
		s := string(*event.NewStatus)
		newStatus = &s
	}

	return TaskEventResponse{
		ID:        event.ID,
		TaskID:    event.TaskID,
		Type:      string(event.Type),
		ActorID:   event.ActorID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Comment:   event.Comment,
		CreatedAt: event.CreatedAt,
	}
}

// ToPayoutResponse converts a community payout, keeping the share order.
func ToPayoutResponse(p *service.CommunityPayout, now time.Time) PayoutResponse {
	shares := make([]ShareResponse, len(p.Shares))
	for i, s := range p.Shares {
		shares[i] = toShareResponse(s, p.XPAwards[s.UserID])
	}
	return PayoutResponse{
		Task:   ToTaskDetail(p.Task, now),
		Shares: shares,
	}
}

func toShareResponse(s payout.Share, xp int) ShareResponse {
	return ShareResponse{
		UserID:      s.UserID,
		Contributed: s.Contributed,
		Amount:      s.Amount,
		XP:          xp,
	}
}

// ToMemberResponse converts a profile to MemberResponse.
func ToMemberResponse(p service.Profile) MemberResponse {
	m := p.Member
	return MemberResponse{
		UserID:         m.UserID,
		Username:       m.Username,
		XP:             m.XP,
		Rank:           p.Rank,
		XPToNextRank:   p.XPToNextRank,
		Role:           p.Role,
		Reward:         p.Reward,
		Balance:        m.Balance,
		TotalEarned:    m.TotalEarned,
		TotalContrib:   m.TotalContrib,
		TasksCreated:   m.TasksCreated,
		TasksClaimed:   m.TasksClaimed,
		TasksCompleted: m.TasksCompleted,
	}
}
