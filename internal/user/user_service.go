package user

import (
	"context"
	"errors"

	"flexileave/internal/balance"
	"flexileave/internal/domain"
	"flexileave/internal/shared/contextutil"
	usererrors "flexileave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock

type Service interface {
	Me(ctx context.Context, actor domain.Actor) (MeResponse, error)
}

// PermissionLister reports the resource:action pairs a role may use.
type PermissionLister interface {
	Permissions(role domain.Role) ([]string, error)
}

type service struct {
	repo        Repository
	balances    balance.Service
	permissions PermissionLister
}

func NewService(repo Repository, balances balance.Service, permissions PermissionLister) Service {
	return &service{
		repo:        repo,
		balances:    balances,
		permissions: permissions,
	}
}

func (s *service) Me(ctx context.Context, actor domain.Actor) (MeResponse, error) {
	l := contextutil.GetLogger(ctx, nil)

	if _, err := uuid.Parse(actor.ID); err != nil {
		return MeResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MeResponse{}, usererrors.ErrUserNotFound
		}
		l.Error("failed to find current user", zap.Error(err))
		return MeResponse{}, err
	}

	balances, err := s.balances.ListForUser(ctx, actor, actor.ID)
	if err != nil {
		l.Error("failed to load balances", zap.Error(err))
		return MeResponse{}, err
	}

	perms, err := s.permissions.Permissions(actor.Role)
	if err != nil {
		l.Error("failed to load permissions", zap.Error(err))
		return MeResponse{}, err
	}
	if perms == nil {
		perms = []string{}
	}

	// The token role wins over the stored one; it is what every check uses.
	resp := mapToResponse(*u)
	resp.Role = actor.Role.String()

	return MeResponse{
		UserResponse: resp,
		Balances:     balances,
		Permissions:  perms,
	}, nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
