package config

import (
	"fmt"
	"os"

	"github.com/mtlprog/guildtask/internal/domain"
	"gopkg.in/yaml.v3"
)

// RecurringFile is the on-disk format of recurring community task definitions.
type RecurringFile struct {
	Definitions []RecurringEntry `yaml:"definitions"`
}

// RecurringEntry is one recurring definition as written in YAML.
type RecurringEntry struct {
	ID               string `yaml:"id"`
	Category         string `yaml:"category"`
	Tier             int    `yaml:"tier"`
	TotalNeeded      int64  `yaml:"total_needed"`
	DropLocation     string `yaml:"drop_location,omitempty"`
	PotSize          int64  `yaml:"pot_size"`
	Description      string `yaml:"description,omitempty"`
	Frequency        string `yaml:"frequency"`
	ExpireAfterHours int    `yaml:"expire_after_hours,omitempty"`
}

const defaultExpireAfterHours = 24

// LoadRecurring reads recurring definitions from a YAML file.
func LoadRecurring(path string) ([]*domain.RecurringDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load recurring definitions %q: %w", path, err)
	}
	return ParseRecurring(data)
}

// ParseRecurring decodes and validates recurring definitions.
func ParseRecurring(data []byte) ([]*domain.RecurringDefinition, error) {
	var file RecurringFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse recurring definitions: %w", err)
	}

	seen := make(map[string]bool, len(file.Definitions))
	defs := make([]*domain.RecurringDefinition, 0, len(file.Definitions))
	for i, e := range file.Definitions {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: definition #%d has no id", domain.ErrInvalidInput, i+1)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate definition id %q", domain.ErrInvalidInput, e.ID)
		}
		seen[e.ID] = true

		def, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", e.ID, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (e RecurringEntry) toDomain() (*domain.RecurringDefinition, error) {
	category := domain.TaskCategory(e.Category)
	if category == "" {
		category = domain.TaskCategoryCommunity
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, e.Category)
	}
	if e.Tier < domain.MinTier || e.Tier > domain.MaxTier {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTier, e.Tier)
	}
	frequency := domain.RecurrenceFrequency(e.Frequency)
	if frequency.Interval() == 0 {
		return nil, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidInput, e.Frequency)
	}
	if e.PotSize < 0 || e.TotalNeeded < 0 {
		return nil, fmt.Errorf("%w: pot size and total needed must not be negative", domain.ErrInvalidInput)
	}
	expire := e.ExpireAfterHours
	if expire == 0 {
		expire = defaultExpireAfterHours
	}

	return &domain.RecurringDefinition{
		ID:               e.ID,
		Category:         category,
		Tier:             e.Tier,
		TotalNeeded:      e.TotalNeeded,
		DropLocation:     e.DropLocation,
		PotSize:          e.PotSize,
		Description:      e.Description,
		Frequency:        frequency,
		ExpireAfterHours: expire,
	}, nil
}
