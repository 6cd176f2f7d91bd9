package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/handler/dto"
	"github.com/mtlprog/guildtask/internal/middleware"
	"github.com/mtlprog/guildtask/internal/repository"
)

// handleGetStats returns guild and member statistics.
// @Summary Get statistics
// @Description Get guild and member task statistics for a given period
// @Tags stats
// @Produce json
// @Param period query string false "Period: day, week (default), month, all"
// @Param user_id query int false "Filter by specific member"
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	query := r.URL.Query()
	filters := dto.StatsFilters{Period: query.Get("period")}
	if filters.Period == "" {
		filters.Period = "week"
	}

	now := h.clock.Now()
	var periodStart time.Time
	switch filters.Period {
	case "day":
		periodStart = now.AddDate(0, 0, -1)
	case "week":
		periodStart = now.AddDate(0, 0, -7)
	case "month":
		periodStart = now.AddDate(0, -1, 0)
	case "all":
		periodStart = time.Time{} // Beginning of time
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period, must be: day, week, month, all")
		return
	}

	if userID := query.Get("user_id"); userID != "" {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id must be an integer")
			return
		}
		filters.UserID = &id
	}

	memberStats, err := h.taskRepo.GetMemberStats(ctx, repository.StatsFilters{
		PeriodStart: periodStart,
		PeriodEnd:   now,
		UserID:      filters.UserID,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch member stats")
		return
	}

	guildStats, err := h.taskRepo.GetGuildStats(ctx, repository.StatsFilters{
		PeriodStart: periodStart,
		PeriodEnd:   now,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch guild stats")
		return
	}

	members := make([]dto.MemberStats, len(memberStats))
	for i, stat := range memberStats {
		members[i] = dto.MemberStats{
			UserID:          stat.UserID,
			Username:        stat.Username,
			TasksCompleted:  stat.TasksCompleted,
			TasksExpired:    stat.TasksExpired,
			TasksInProgress: stat.TasksInProgress,
			Contributed:     stat.Contributed,
		}
	}

	// Completion rate counts only finalized tasks.
	closed := guildStats.TasksByStatus[string(domain.TaskStatusClosed)]
	finalized := closed + guildStats.TasksByStatus[string(domain.TaskStatusExpired)]
	completionRate := 0.0
	if finalized > 0 {
		completionRate = float64(closed) / float64(finalized) * 100
	}

	respondJSON(w, http.StatusOK, dto.StatsResponse{
		Period:      filters.Period,
		PeriodStart: periodStart,
		PeriodEnd:   now,
		Members:     members,
		Guild: dto.GuildStats{
			TotalTasksCreated:     guildStats.TotalTasksCreated,
			TasksByStatus:         guildStats.TasksByStatus,
			TasksByKind:           guildStats.TasksByKind,
			OverdueCount:          guildStats.OverdueCount,
			PotOutstanding:        guildStats.PotOutstanding,
			CompletionRatePercent: completionRate,
		},
	})
}
