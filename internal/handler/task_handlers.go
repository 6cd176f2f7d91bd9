package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/handler/dto"
	"github.com/mtlprog/guildtask/internal/middleware"
	"github.com/mtlprog/guildtask/internal/repository"
	"github.com/mtlprog/guildtask/internal/service"
)

// handleCreateTask creates a new standard task.
// @Summary Create a standard task
// @Description Creates a single-claimant task. New tasks start UNAPPROVED and need an officer's approval.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskDetail
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetActorFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Category == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "category is required")
		return
	}

	task, err := h.taskService.CreateStandard(ctx, actor, service.CreateStandardParams{
		Category:       domain.TaskCategory(req.Category),
		Tier:           req.Tier,
		Quantity:       req.Quantity,
		Tip:            req.Tip,
		Description:    req.Description,
		DeliveryMethod: req.DeliveryMethod,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskDetail(task, h.clock.Now()))
}

// handleCreateCommunityTask creates a new community task.
// @Summary Create a community task
// @Description Officers post a community task with a currency pot shared among contributors. Community tasks start APPROVED.
// @Tags community
// @Accept json
// @Produce json
// @Param request body dto.CreateCommunityTaskRequest true "Community task creation request"
// @Success 201 {object} dto.TaskDetail
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /community-tasks [post]
func (h *Handler) handleCreateCommunityTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetActorFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateCommunityTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	task, err := h.taskService.CreateCommunity(ctx, actor, service.CreateCommunityParams{
		Category:     domain.TaskCategory(req.Category),
		Tier:         req.Tier,
		TotalNeeded:  req.TotalNeeded,
		PotSize:      req.PotSize,
		Tip:          req.Tip,
		DropLocation: req.DropLocation,
		Description:  req.Description,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskDetail(task, h.clock.Now()))
}

// handleGetTask retrieves task details with events.
// @Summary Get task details
// @Description Get full task details including contribution totals and event history
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, err := h.taskService.History(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TaskDetailResponse{
		Task:   dto.ToTaskDetail(task, h.clock.Now()),
		Events: toEventResponses(events),
	})
}

// handleTaskEvents returns the audit trail of a task.
// @Summary Get task history
// @Description Get the ordered event log of a task, optionally filtered by a comma-separated list of event types
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Param type query string false "Event types, e.g. contribution_recorded,payout"
// @Success 200 {array} dto.TaskEventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/events [get]
func (h *Handler) handleTaskEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var types []domain.EventType
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		for _, t := range splitAndTrim(strings.ToLower(typeParam), ",") {
			types = append(types, domain.EventType(t))
		}
	}

	events, err := h.taskService.History(ctx, taskID, types...)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// handlePayoutLedger returns the delivery and payout events of a community task.
// @Summary Payout ledger
// @Tags community
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {array} dto.TaskEventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/ledger [get]
func (h *Handler) handlePayoutLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	events, err := h.taskService.PayoutLedger(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// handleDeleteTask removes a task and its history.
// @Summary Delete a task
// @Description Unapproved tasks can be deleted by anyone; the creator can delete their task at any time
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetActorFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(ctx, taskID, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, taskID int64, actor domain.Actor) (*domain.Task, error)

// transitionHandler adapts a lifecycle operation to an HTTP handler.
// @Summary Transition a standard task
// @Description Runs one lifecycle transition for the authenticated member. The permitted actor and source status depend on the action.
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.TaskDetail
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/approve [post]
// @Router /tasks/{id}/decline [post]
// @Router /tasks/{id}/claim [post]
// @Router /tasks/{id}/abandon [post]
// @Router /tasks/{id}/complete [post]
// @Router /tasks/{id}/verify [post]
// @Router /tasks/{id}/close [post]
// @Router /tasks/{id}/expire [post]
func (h *Handler) transitionHandler(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		actor, err := middleware.GetActorFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
			return
		}

		taskID, ok := extractID(w, r, "id")
		if !ok {
			return
		}

		task, err := fn(ctx, taskID, actor)
		if err != nil {
			respondDomainError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, dto.ToTaskDetail(task, h.clock.Now()))
	}
}

// handleRecordContribution records a verified delivery on a community task.
// @Summary Record a contribution
// @Description Officers confirm a member's delivery to a community task. Repeated deliveries accumulate.
// @Tags community
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body dto.RecordContributionRequest true "Contribution"
// @Success 201 {object} dto.TaskDetail
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/contributions [post]
func (h *Handler) handleRecordContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetActorFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	// Delivery approval is an officer duty; the engine itself does not gate it.
	if !actor.CanModerate() {
		respondError(w, http.StatusForbidden, "NOT_AUTHORIZED", "only officers can record contributions")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	var req dto.RecordContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.UserID <= 0 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user_id is required")
		return
	}

	task, err := h.taskService.RecordContribution(ctx, taskID, req.UserID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskDetail(task, h.clock.Now()))
}

// handleContributionLog returns every delivery recorded against a community task.
// @Summary Contribution log
// @Tags community
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {array} dto.ContributionEntryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/contributions [get]
func (h *Handler) handleContributionLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.taskService.ContributionLog(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.ContributionEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.ContributionEntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Amount:     e.Amount,
			RecordedAt: e.RecordedAt,
		}
	}

	respondJSON(w, http.StatusOK, out)
}

// handleTopContributors returns the largest contributors of a community task.
// @Summary Top contributors
// @Description Contributors ordered by amount, largest first, ties by lowest user id
// @Tags community
// @Produce json
// @Param id path int true "Task ID"
// @Param limit query int false "Number of contributors (1-100, default 10)"
// @Success 200 {array} dto.ContributorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/contributors [get]
func (h *Handler) handleTopContributors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := middleware.GetMemberFromContext(ctx); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	totals, err := h.taskService.TopContributors(ctx, taskID, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	contributors := make([]dto.ContributorResponse, len(totals))
	for i, t := range totals {
		contributors[i] = dto.ContributorResponse{UserID: t.UserID, Amount: t.Amount}
	}

	respondJSON(w, http.StatusOK, contributors)
}

// handleCompleteCommunity closes a community task and pays out its pot.
// @Summary Complete a community task
// @Description Splits the pot proportionally among contributors and grants XP. The largest contributor receives the rounding remainder.
// @Tags community
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.PayoutResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/payout [post]
func (h *Handler) handleCompleteCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := middleware.GetActorFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.taskService.CompleteCommunity(ctx, taskID, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToPayoutResponse(result, h.clock.Now()))
}

// handleListTasks returns a list of tasks with filters.
// @Summary List tasks
// @Description Get a list of tasks with optional filters
// @Tags tasks
// @Produce json
// @Param status query string false "Comma-separated statuses: APPROVED,CLAIMED"
// @Param kind query string false "standard or community"
// @Param category query string false "Task category"
// @Param created_by query string false "Filter by creator: 'me' or user id"
// @Param claimed_by query string false "Filter by claimant: 'me' or user id"
// @Param overdue query bool false "Show only overdue tasks"
// @Param sort query string false "Sort fields: -tier,created_at"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := middleware.GetMemberFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	query := r.URL.Query()
	filters := dto.ListTasksFilters{
		Overdue: query.Get("overdue") == "true",
		Limit:   50,
	}

	if statusParam := query.Get("status"); statusParam != "" {
		filters.Status = splitAndTrim(strings.ToUpper(statusParam), ",")
		for _, s := range filters.Status {
			if !domain.TaskStatus(s).IsValid() {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status: "+s)
				return
			}
		}
	}

	if kind := query.Get("kind"); kind != "" {
		if !domain.TaskKind(kind).IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "kind must be 'standard' or 'community'")
			return
		}
		filters.Kind = &kind
	}

	if category := query.Get("category"); category != "" {
		filters.Category = &category
	}

	for param, dst := range map[string]**int64{
		"created_by": &filters.CreatedBy,
		"claimed_by": &filters.ClaimedBy,
	} {
		id, ok := parseMemberParam(query.Get(param), member.UserID)
		if !ok {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", param+" must be 'me' or a user id")
			return
		}
		*dst = id
	}

	if sortParam := query.Get("sort"); sortParam != "" {
		filters.Sort = splitAndTrim(sortParam, ",")
	}

	if limitParam := query.Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 200 {
			filters.Limit = n
		}
	}

	if offsetParam := query.Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	results, total, err := h.taskService.ListTasks(ctx, repository.TaskListFilters{
		Statuses:  filters.Status,
		Kind:      filters.Kind,
		Category:  filters.Category,
		CreatedBy: filters.CreatedBy,
		ClaimedBy: filters.ClaimedBy,
		Overdue:   filters.Overdue,
		Now:       h.clock.Now(),
		Sort:      filters.Sort,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	tasks := make([]dto.TaskListResponse, len(results))
	for i, result := range results {
		tasks[i] = dto.ToTaskListResponse(result.Task, result.IsOverdue)
	}

	respondJSON(w, http.StatusOK, dto.TasksListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// parseMemberParam resolves "me" or a numeric user id. An empty value yields nil.
func parseMemberParam(value string, self int64) (*int64, bool) {
	switch value {
	case "":
		return nil, true
	case "me":
		return &self, true
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func toEventResponses(events []*domain.TaskEvent) []dto.TaskEventResponse {
	out := make([]dto.TaskEventResponse, len(events))
	for i, event := range events {
		out[i] = dto.ToTaskEventResponse(event)
	}
	return out
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
