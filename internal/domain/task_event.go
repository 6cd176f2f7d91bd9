package domain

import "time"

// EventType represents the type of task event.
type EventType string

const (
	EventTypeCreated      EventType = "created"
	EventTypeApproved     EventType = "approved"
	EventTypeDeclined     EventType = "declined"
	EventTypeClaimed      EventType = "claimed"
	EventTypeAbandoned    EventType = "abandoned"
	EventTypeCompleted    EventType = "completed"
	EventTypeVerified     EventType = "verified"
	EventTypeClosed       EventType = "closed"
	EventTypeExpired      EventType = "expired"
	EventTypeContribution EventType = "contribution_recorded"
	EventTypePayout       EventType = "payout"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeCreated, EventTypeApproved, EventTypeDeclined, EventTypeClaimed,
		EventTypeAbandoned, EventTypeCompleted, EventTypeVerified, EventTypeClosed,
		EventTypeExpired, EventTypeContribution, EventTypePayout:
		return true
	default:
		return false
	}
}

// TaskEvent represents an audit log entry for a task action.
type TaskEvent struct {
	ID        int64
	TaskID    int64
	ActorID   *int64 // nil for system events
	Type      EventType
	OldStatus *TaskStatus
	NewStatus *TaskStatus
	Comment   string
	CreatedAt time.Time
}

// IsSystemEvent returns true if the event was created by the system.
func (e *TaskEvent) IsSystemEvent() bool {
	return e.ActorID == nil
}
