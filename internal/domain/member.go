package domain

import "time"

// Member is a guild member with progression and currency state.
type Member struct {
	UserID         int64
	Username       string
	Token          *string
	IsOwner        bool
	IsOfficer      bool
	IsAdmin        bool
	XP             int
	Balance        int64
	TotalEarned    int64
	TotalContrib   int64
	TasksCreated   int
	TasksClaimed   int
	TasksCompleted int
	RegisteredAt   time.Time
}

// Actor returns the capabilities of the member, resolved once for the engine.
func (m *Member) Actor() Actor {
	return Actor{
		UserID:  m.UserID,
		Owner:   m.IsOwner,
		Officer: m.IsOfficer,
		Admin:   m.IsAdmin,
	}
}

// Actor is the caller of an engine operation together with its role flags.
// Role resolution happens outside the engine; creator and claimant are derived
// per task from the task itself.
type Actor struct {
	UserID  int64
	Owner   bool
	Officer bool
	Admin   bool
}

// CanModerate reports the officer-or-owner capability. Admins count as owners.
func (a Actor) CanModerate() bool {
	return a.Officer || a.Owner || a.Admin
}

// IsOwnerOrAdmin reports whether the actor owns or administers the guild.
func (a Actor) IsOwnerOrAdmin() bool {
	return a.Owner || a.Admin
}
