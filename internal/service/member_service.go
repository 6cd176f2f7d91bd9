package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mtlprog/guildtask/internal/domain"
	"github.com/mtlprog/guildtask/internal/progression"
	"github.com/mtlprog/guildtask/internal/repository"
)

// Profile is a member together with derived progression data.
type Profile struct {
	Member       *domain.Member
	Rank         int
	XPToNextRank int
	Role         string
	Reward       string
}

// NewProfile derives rank data for a member.
func NewProfile(m *domain.Member) Profile {
	rank := progression.Rank(m.XP)
	return Profile{
		Member:       m,
		Rank:         rank,
		XPToNextRank: progression.XPToNextRank(m.XP),
		Role:         progression.RoleForRank(rank),
		Reward:       progression.RewardForRank(rank),
	}
}

// MemberService manages member registration and progression views.
type MemberService struct {
	memberRepo *repository.MemberRepository
}

// NewMemberService creates a new MemberService.
func NewMemberService(memberRepo *repository.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// RegisterParams holds the identity and role flags of a member.
type RegisterParams struct {
	UserID   int64
	Username string
	Owner    bool
	Officer  bool
	Admin    bool
}

// Register creates or updates a member and issues a fresh bearer token.
// The token is returned once; it is stored as-is for lookup.
func (s *MemberService) Register(ctx context.Context, p RegisterParams) (*domain.Member, string, error) {
	if p.UserID <= 0 {
		return nil, "", fmt.Errorf("%w: user id must be positive", domain.ErrInvalidInput)
	}
	if p.Username == "" {
		return nil, "", fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	token := uuid.NewString()
	member, err := s.memberRepo.Upsert(ctx, &domain.Member{
		UserID:    p.UserID,
		Username:  p.Username,
		Token:     &token,
		IsOwner:   p.Owner,
		IsOfficer: p.Officer,
		IsAdmin:   p.Admin,
	})
	if err != nil {
		return nil, "", err
	}

	slog.Info("member registered",
		"user_id", member.UserID,
		"owner", member.IsOwner,
		"officer", member.IsOfficer,
		"admin", member.IsAdmin,
	)

	return member, token, nil
}

// Authenticate resolves a bearer token to a member.
func (s *MemberService) Authenticate(ctx context.Context, token string) (*domain.Member, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, domain.ErrInvalidToken
	}
	member, err := s.memberRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return member, nil
}

// Profile returns a member's progression profile.
func (s *MemberService) Profile(ctx context.Context, userID int64) (Profile, error) {
	member, err := s.memberRepo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return NewProfile(member), nil
}

// Leaderboard returns the top members by XP.
func (s *MemberService) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	members, err := s.memberRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, len(members))
	for i, m := range members {
		profiles[i] = NewProfile(m)
	}
	return profiles, nil
}
