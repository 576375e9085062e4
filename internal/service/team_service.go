package service

import (
	"context"
	"time"

	"github.com/gittldr/server/internal/models"
)

// TeamStore persists workspace members.
type TeamStore interface {
	Insert(ctx context.Context, m models.TeamMember) error
	List(ctx context.Context) ([]models.TeamMember, error)
	Delete(ctx context.Context, login string) error
}

// UserGetter resolves GitHub profiles.
type UserGetter interface {
	GetUser(ctx context.Context, login string) (models.TeamMember, error)
}

// TeamService manages workspace collaborators.
type TeamService interface {
	Members(ctx context.Context) ([]models.TeamMember, error)
	Invite(ctx context.Context, login, role string) (models.TeamMember, error)
	Remove(ctx context.Context, login string) error
}

type teamService struct {
	store TeamStore
	gh    UserGetter
}

// NewTeamService wires dependencies.
func NewTeamService(store TeamStore, gh UserGetter) TeamService {
	return &teamService{store: store, gh: gh}
}

func (s *teamService) Members(ctx context.Context) ([]models.TeamMember, error) {
	return s.store.List(ctx)
}

// Invite resolves the login against GitHub so the member record carries a
// real name and avatar.
func (s *teamService) Invite(ctx context.Context, login, role string) (models.TeamMember, error) {
	member, err := s.gh.GetUser(ctx, login)
	if err != nil {
		return models.TeamMember{}, err
	}

	if role == "" {
		role = "member"
	}
	member.Role = role
	member.InvitedAt = time.Now()

	if err := s.store.Insert(ctx, member); err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

func (s *teamService) Remove(ctx context.Context, login string) error {
	return s.store.Delete(ctx, login)
}
