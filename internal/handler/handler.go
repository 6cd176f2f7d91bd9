package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mtlprog/guildtask/docs" // Import generated docs
	"github.com/mtlprog/guildtask/internal/config"
	"github.com/mtlprog/guildtask/internal/handler/dto"
	"github.com/mtlprog/guildtask/internal/middleware"
	"github.com/mtlprog/guildtask/internal/repository"
	"github.com/mtlprog/guildtask/internal/service"
	"github.com/mtlprog/guildtask/internal/static"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool            *pgxpool.Pool
	taskService     *service.TaskService
	memberService   *service.MemberService
	taskRepo        *repository.TaskRepository
	clock           service.Clock
	leaderboardSize int
	authMiddleware  *middleware.AuthMiddleware
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the clock used by the services and for overdue flags.
func WithClock(c service.Clock) Option {
	return func(h *Handler) {
		h.clock = c
	}
}

// WithLeaderboardSize sets the default number of members returned by GET /leaderboard.
func WithLeaderboardSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.leaderboardSize = n
		}
	}
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, opts ...Option) *Handler {
	h := &Handler{
		pool:            pool,
		clock:           service.SystemClock{},
		leaderboardSize: config.DefaultLeaderboardSize,
	}
	for _, opt := range opts {
		opt(h)
	}

	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	eventRepo := repository.NewTaskEventRepository(pool)
	contribRepo := repository.NewContributionRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)

	// Create services
	h.taskService = service.NewTaskService(pool, taskRepo, eventRepo, contribRepo, memberRepo, h.clock)
	h.memberService = service.NewMemberService(memberRepo)
	h.taskRepo = taskRepo

	// Create middleware
	h.authMiddleware = middleware.NewAuthMiddleware(h.memberService)

	return h
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// API usage notes
	mux.HandleFunc("GET /help.md", h.handleHelpMd)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// API v1 routes with authentication
	auth := func(fn http.HandlerFunc) http.Handler {
		return h.authMiddleware.Authenticate(fn)
	}

	mux.Handle("GET /api/v1/tasks", auth(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", auth(h.handleCreateTask))
	mux.Handle("POST /api/v1/community-tasks", auth(h.handleCreateCommunityTask))
	mux.Handle("GET /api/v1/tasks/{id}", auth(h.handleGetTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", auth(h.handleDeleteTask))

	mux.Handle("POST /api/v1/tasks/{id}/approve", auth(h.transitionHandler(h.taskService.Approve)))
	mux.Handle("POST /api/v1/tasks/{id}/decline", auth(h.transitionHandler(h.taskService.Decline)))
	mux.Handle("POST /api/v1/tasks/{id}/claim", auth(h.transitionHandler(h.taskService.Claim)))
	mux.Handle("POST /api/v1/tasks/{id}/abandon", auth(h.transitionHandler(h.taskService.Abandon)))
	mux.Handle("POST /api/v1/tasks/{id}/complete", auth(h.transitionHandler(h.taskService.Complete)))
	mux.Handle("POST /api/v1/tasks/{id}/verify", auth(h.transitionHandler(h.taskService.Verify)))
	mux.Handle("POST /api/v1/tasks/{id}/close", auth(h.transitionHandler(h.taskService.Close)))
	mux.Handle("POST /api/v1/tasks/{id}/expire", auth(h.transitionHandler(h.taskService.Expire)))

	mux.Handle("POST /api/v1/tasks/{id}/contributions", auth(h.handleRecordContribution))
	mux.Handle("GET /api/v1/tasks/{id}/contributions", auth(h.handleContributionLog))
	mux.Handle("GET /api/v1/tasks/{id}/contributors", auth(h.handleTopContributors))
	mux.Handle("GET /api/v1/tasks/{id}/events", auth(h.handleTaskEvents))
	mux.Handle("GET /api/v1/tasks/{id}/ledger", auth(h.handlePayoutLedger))
	mux.Handle("POST /api/v1/tasks/{id}/payout", auth(h.handleCompleteCommunity))

	mux.Handle("GET /api/v1/members/{id}", auth(h.handleGetMember))
	mux.Handle("GET /api/v1/leaderboard", auth(h.handleLeaderboard))
	mux.Handle("GET /api/v1/stats", auth(h.handleGetStats))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleHelpMd serves the embedded API usage notes.
func (h *Handler) handleHelpMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.HelpMd))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a service error to its HTTP representation.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID parses a positive integer path parameter.
// Returns (id, true) if valid, (0, false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a positive integer")
		return 0, false
	}

	return id, true
}
