package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/service"
)

type contextKey string

const (
	// ContextKeyMember is the key for storing the authenticated member in request context.
	ContextKeyMember contextKey = "member"
)

// AuthMiddleware handles Bearer token authentication.
type AuthMiddleware struct {
	members *service.MemberService
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(members *service.MemberService) *AuthMiddleware {
	return &AuthMiddleware{
		members: members,
	}
}

// Authenticate validates Bearer token and adds the member to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		member, err := m.members.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			slog.Error("failed to authenticate member", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyMember, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetMemberFromContext retrieves the authenticated member from request context.
func GetMemberFromContext(ctx context.Context) (*domain.Member, error) {
	member, ok := ctx.Value(ContextKeyMember).(*domain.Member)
	if !ok || member == nil {
		return nil, domain.ErrInvalidToken
	}
	return member, nil
}

// GetActorFromContext resolves the authenticated member into an engine actor.
func GetActorFromContext(ctx context.Context) (domain.Actor, error) {
	member, err := GetMemberFromContext(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	return member.Actor(), nil
}
