package service

import (
	"context"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/repository"
)

// AdminService exposes the read-only admin rollups. No state, no
// invariants: everything is a projection over the other components.
type AdminService interface {
	Overview(ctx context.Context, actor domain.Actor) (*repository.Overview, error)
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
}

type adminService struct {
	statsRepo repository.StatsRepository
	userRepo  repository.UserRepository
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(statsRepo repository.StatsRepository, userRepo repository.UserRepository) AdminService {
	return &adminService{
		statsRepo: statsRepo,
		userRepo:  userRepo,
	}
}

// Overview returns the marketplace totals
func (s *adminService) Overview(ctx context.Context, actor domain.Actor) (*repository.Overview, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, forbiddenError("admin access required")
	}
	return s.statsRepo.Overview(ctx)
}

// ListUsers returns every account
func (s *adminService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, forbiddenError("admin access required")
	}
	return s.userRepo.List(ctx)
}
