package handler

import (
	"net/http"
	"strconv"

	"github.com/mtlprog/guildtask/internal/handler/dto"
	"github.com/mtlprog/guildtask/internal/middleware"
)

// handleGetMember returns a member's progression profile.
// @Summary Get member profile
// @Description XP, rank, XP to the next rank, role and rank reward
// @Tags members
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.MemberResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /members/{id} [get]
func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	userID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.memberService.Profile(ctx, userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMemberResponse(profile))
}

// handleLeaderboard returns the top members by XP.
// @Summary Leaderboard
// @Description Members ordered by XP, highest first
// @Tags members
// @Produce json
// @Param limit query int false "Number of members (1-100)"
// @Success 200 {object} dto.LeaderboardResponse
// @Security BearerAuth
// @Router /leaderboard [get]
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	limit := h.leaderboardSize
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	profiles, err := h.memberService.Leaderboard(ctx, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	members := make([]dto.MemberResponse, len(profiles))
	for i, p := range profiles {
		members[i] = dto.ToMemberResponse(p)
	}

	respondJSON(w, http.StatusOK, dto.LeaderboardResponse{Members: members})
}
