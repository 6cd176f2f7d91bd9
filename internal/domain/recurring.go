package domain

import "time"

// RecurrenceFrequency controls how often a recurring definition fires.
type RecurrenceFrequency string

const (
	FrequencyDaily  RecurrenceFrequency = "daily"
	FrequencyWeekly RecurrenceFrequency = "weekly"
)

// Interval returns the minimum time between two runs, or 0 for unknown frequencies.
func (f RecurrenceFrequency) Interval() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// RecurringDefinition is a template for community tasks posted on a schedule.
type RecurringDefinition struct {
	ID               string
	Category         TaskCategory
	Tier             int
	TotalNeeded      int64
	DropLocation     string
	PotSize          int64
	Description      string
	Frequency        RecurrenceFrequency
	ExpireAfterHours int
	LastRunAt        *time.Time
	CreatedAt        time.Time
}

// IsDue reports whether the definition should fire at now.
// A definition that never ran is always due; unknown frequencies never are.
func (d *RecurringDefinition) IsDue(now time.Time) bool {
	if d.LastRunAt == nil {
		return true
	}
	interval := d.Frequency.Interval()
	if interval == 0 {
		return false
	}
	return now.Sub(*d.LastRunAt) >= interval
}
