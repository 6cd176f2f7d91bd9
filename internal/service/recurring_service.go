package service

import (
	"context"
	"log/slog"

	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/repository"
)

// ImportRecurring stores recurring definitions, replacing templates with the same id.
// Returns how many definitions were written before the first failure.
func ImportRecurring(ctx context.Context, repo *repository.RecurringRepository, defs []*domain.RecurringDefinition) (int, error) {
	for i, def := range defs {
		if err := repo.Upsert(ctx, def); err != nil {
			return i, err
		}
		slog.Info("recurring definition imported",
			"definition_id", def.ID,
			"frequency", def.Frequency,
			"pot_size", def.PotSize,
		)
	}
	return len(defs), nil
}
