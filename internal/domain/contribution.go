package domain

import "time"

// Contribution is a single verified delivery recorded against a community task.
type Contribution struct {
	ID         int64
	TaskID     int64
	UserID     int64
	Amount     int64
	RecordedAt time.Time
}

// ContributorTotal is the accumulated contribution of one member to one task.
type ContributorTotal struct {
	UserID int64
	Amount int64
}
