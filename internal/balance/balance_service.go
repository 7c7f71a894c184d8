package balance

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	balanceerrors "flexileave/internal/balance/errors"
	"flexileave/internal/domain"
	"flexileave/internal/leave/policy"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	BalanceCacheKeyPrefix = "balances:"
	BalanceCacheTTL       = 10 * time.Minute
)

func GetBalanceCacheKey(userID string) string {
	return BalanceCacheKeyPrefix + userID
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	// GetBalances returns the remaining days per leave type, served from
	// Redis when possible.
	GetBalances(ctx context.Context, userID string) (policy.Balances, error)
	ListForUser(ctx context.Context, actor domain.Actor, userID string) ([]BalanceResponse, error)
	Set(ctx context.Context, actor domain.Actor, userID string, req SetBalanceRequest) ([]BalanceResponse, error)
	Invalidate(ctx context.Context, userID string)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) GetBalances(ctx context.Context, userID string) (policy.Balances, error) {
	cacheKey := GetBalanceCacheKey(userID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var balances policy.Balances
			if err := json.Unmarshal([]byte(cached), &balances); err == nil {
				return balances, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		rows, err := s.repo.FindByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		balances := ToBalances(rows)

		if s.rdb != nil {
			if data, err := json.Marshal(balances); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, BalanceCacheTTL).Err(); err != nil {
					s.logger.Warn("balance cache store failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return balances, nil
	})
	if err != nil {
		s.logger.Error("get balances failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return v.(policy.Balances), nil
}

func (s *service) ListForUser(ctx context.Context, actor domain.Actor, userID string) ([]BalanceResponse, error) {
	if !actor.IsAdmin() && !actor.Owns(userID) {
		return nil, balanceerrors.ErrNotVisible
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	balances, err := s.GetBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}

func (s *service) Set(ctx context.Context, actor domain.Actor, userID string, req SetBalanceRequest) ([]BalanceResponse, error) {
	if !actor.IsAdmin() {
		return nil, balanceerrors.ErrAdminOnly
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}
	leaveType, ok := policy.ParseLeaveType(req.LeaveType)
	if !ok {
		return nil, balanceerrors.ErrInvalidLeaveType
	}
	if req.Remaining == nil || *req.Remaining < 0 {
		return nil, balanceerrors.ErrNegativeBalance
	}

	s.logger.Debug("set balance requested",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", userID),
		zap.String("leave_type", leaveType.String()),
		zap.Int("remaining", *req.Remaining),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("set balance begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Upsert(ctx, &UserBalance{
		ID:        uuid.New(),
		UserID:    userUUID,
		LeaveType: leaveType.String(),
		Remaining: *req.Remaining,
	}); err != nil {
		s.logger.Error("set balance persist failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	rows, err := qtx.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("set balance commit failed", zap.Error(err))
		return nil, err
	}

	s.Invalidate(ctx, userID)
	s.logger.Info("set balance success",
		zap.String("user_id", userID),
		zap.String("leave_type", leaveType.String()),
	)

	return mapToListResponse(ToBalances(rows)), nil
}

func (s *service) Invalidate(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetBalanceCacheKey(userID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate balance cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

// ToBalances drops rows with unknown leave types.
func ToBalances(rows []UserBalance) policy.Balances {
	balances := make(policy.Balances, len(rows))
	for _, row := range rows {
		if t, ok := policy.ParseLeaveType(row.LeaveType); ok {
			balances[t] = row.Remaining
		}
	}
	return balances
}

func mapToListResponse(balances policy.Balances) []BalanceResponse {
	types := policy.LeaveTypes()
	resp := make([]BalanceResponse, len(types))
	for i, t := range types {
		resp[i] = BalanceResponse{
			LeaveType:       t.String(),
			Label:           t.Label(),
			Remaining:       balances.Remaining(t),
			RequiresBalance: t.RequiresBalance(),
		}
	}
	return resp
}
