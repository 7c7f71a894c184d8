package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"flexileave/internal/balance"
	balanceerrors "flexileave/internal/balance/errors"
	balanceMock "flexileave/internal/balance/mock"
	"flexileave/internal/domain"
	"flexileave/internal/leave/policy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   balance.Service
	repo      *balanceMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	rdb, redisMock := redismock.NewClientMock()
	repo := balanceMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   balance.NewService(db, repo, rdb),
		repo:      repo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestBalanceService_GetBalances(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		userID := uuid.NewString()

		deps.redismock.ExpectGet(balance.GetBalanceCacheKey(userID)).SetVal(`{"AnnualLeave":5,"SickLeave":2}`)
		deps.repo.EXPECT().FindByUser(gomock.Any(), gomock.Any()).Times(0)

		got, err := deps.service.GetBalances(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, policy.Balances{policy.AnnualLeave: 5, policy.SickLeave: 2}, got)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		userID := uuid.NewString()
		cacheKey := balance.GetBalanceCacheKey(userID)

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.EXPECT().
			FindByUser(gomock.Any(), userID).
			Return([]balance.UserBalance{
				{LeaveType: "AnnualLeave", Remaining: 7},
				{LeaveType: "SickLeave", Remaining: 3},
				{LeaveType: "Sabbatical", Remaining: 90},
			}, nil)
		deps.redismock.ExpectSet(cacheKey, []byte(`{"AnnualLeave":7,"SickLeave":3}`), balance.BalanceCacheTTL).SetVal("OK")

		got, err := deps.service.GetBalances(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, policy.Balances{policy.AnnualLeave: 7, policy.SickLeave: 3}, got)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		userID := uuid.NewString()

		deps.redismock.ExpectGet(balance.GetBalanceCacheKey(userID)).RedisNil()
		deps.repo.EXPECT().FindByUser(gomock.Any(), userID).Return(nil, errors.New("database connection lost"))

		got, err := deps.service.GetBalances(ctx, userID)

		assert.Nil(t, got)
		assert.EqualError(t, err, "database connection lost")
	})
}

func TestBalanceService_ListForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("owner sees every leave type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(balance.GetBalanceCacheKey(userID)).SetVal(`{"AnnualLeave":4}`)

		got, err := deps.service.ListForUser(ctx, domain.Actor{ID: userID, Role: domain.RoleUser}, userID)

		assert.NoError(t, err)
		assert.Len(t, got, 5)
		assert.Equal(t, balance.BalanceResponse{
			LeaveType: "AnnualLeave", Label: "Annual Leave", Remaining: 4, RequiresBalance: true,
		}, got[0])
		assert.False(t, got[3].RequiresBalance)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.ListForUser(ctx, domain.Actor{ID: uuid.NewString(), Role: domain.RoleUser}, userID)

		assert.ErrorIs(t, err, balanceerrors.ErrNotVisible)
	})
}

func TestBalanceService_Set(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}
	userID := uuid.NewString()
	ten := 10

	t.Run("success invalidates cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Upsert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b *balance.UserBalance) error {
				assert.Equal(t, userID, b.UserID.String())
				assert.Equal(t, "SickLeave", b.LeaveType)
				assert.Equal(t, 10, b.Remaining)
				return nil
			})
		deps.repo.EXPECT().
			FindByUser(gomock.Any(), userID).
			Return([]balance.UserBalance{{LeaveType: "SickLeave", Remaining: 10}}, nil)
		deps.redismock.ExpectDel(balance.GetBalanceCacheKey(userID)).SetVal(1)

		got, err := deps.service.Set(ctx, admin, userID, balance.SetBalanceRequest{LeaveType: "Sick Leave", Remaining: &ten})

		assert.NoError(t, err)
		assert.Equal(t, 10, got[1].Remaining)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("non admin is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Set(ctx, domain.Actor{ID: userID, Role: domain.RoleUser}, userID,
			balance.SetBalanceRequest{LeaveType: "SickLeave", Remaining: &ten})

		assert.ErrorIs(t, err, balanceerrors.ErrAdminOnly)
	})

	t.Run("unknown leave type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Set(ctx, admin, userID, balance.SetBalanceRequest{LeaveType: "Gardening", Remaining: &ten})

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidLeaveType)
	})

	t.Run("persist failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := deps.service.Set(ctx, admin, userID, balance.SetBalanceRequest{LeaveType: "SickLeave", Remaining: &ten})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
