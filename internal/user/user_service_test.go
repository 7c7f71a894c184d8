package user_test

import (
	"context"
	"errors"
	"testing"

	"flexileave/internal/balance"
	balanceMock "flexileave/internal/balance/mock"
	"flexileave/internal/domain"
	"flexileave/internal/user"
	usererrors "flexileave/internal/user/errors"
	mock_user "flexileave/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakePermissions map[domain.Role][]string

func (f fakePermissions) Permissions(role domain.Role) ([]string, error) {
	return f[role], nil
}

func setup(t *testing.T) (*mock_user.MockRepository, *balanceMock.MockService, user.Service) {
	ctrl := gomock.NewController(t)
	mockRepo := mock_user.NewMockRepository(ctrl)
	mockBalances := balanceMock.NewMockService(ctrl)
	perms := fakePermissions{domain.RoleAdmin: {"leave:approve", "leave:read_all"}}
	return mockRepo, mockBalances, user.NewService(mockRepo, mockBalances, perms)
}

func TestUserService_Me(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo, mockBalances, svc := setup(t)
		actor := domain.Actor{ID: id.String(), Role: domain.RoleAdmin}

		mockRepo.EXPECT().
			FindByID(gomock.Any(), id.String()).
			Return(&user.User{ID: id, Name: "Ayo", Email: "ayo@mail.com", Role: "admin"}, nil)
		mockBalances.EXPECT().
			ListForUser(gomock.Any(), actor, id.String()).
			Return([]balance.BalanceResponse{{LeaveType: "AnnualLeave", Remaining: 12}}, nil)

		res, err := svc.Me(ctx, actor)

		assert.NoError(t, err)
		assert.Equal(t, "ayo@mail.com", res.Email)
		assert.Equal(t, "admin", res.Role)
		assert.Len(t, res.Balances, 1)
		assert.Equal(t, []string{"leave:approve", "leave:read_all"}, res.Permissions)
	})

	t.Run("user without permissions gets an empty list", func(t *testing.T) {
		mockRepo, mockBalances, svc := setup(t)
		actor := domain.Actor{ID: id.String(), Role: domain.RoleUser}

		mockRepo.EXPECT().FindByID(gomock.Any(), id.String()).Return(&user.User{ID: id}, nil)
		mockBalances.EXPECT().ListForUser(gomock.Any(), actor, id.String()).Return(nil, nil)

		res, err := svc.Me(ctx, actor)

		assert.NoError(t, err)
		assert.NotNil(t, res.Permissions)
		assert.Empty(t, res.Permissions)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo, _, svc := setup(t)

		mockRepo.EXPECT().FindByID(gomock.Any(), id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Me(ctx, domain.Actor{ID: id.String(), Role: domain.RoleUser})

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})

	t.Run("balance error", func(t *testing.T) {
		mockRepo, mockBalances, svc := setup(t)

		mockRepo.EXPECT().FindByID(gomock.Any(), id.String()).Return(&user.User{ID: id}, nil)
		mockBalances.EXPECT().ListForUser(gomock.Any(), gomock.Any(), id.String()).Return(nil, errors.New("redis down"))

		_, err := svc.Me(ctx, domain.Actor{ID: id.String(), Role: domain.RoleUser})

		assert.EqualError(t, err, "redis down")
	})

	t.Run("invalid id", func(t *testing.T) {
		_, _, svc := setup(t)

		_, err := svc.Me(ctx, domain.Actor{ID: "abc", Role: domain.RoleUser})

		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})
}
