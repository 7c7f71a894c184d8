package rbac

import (
	"sort"
	"sync"

	"flexileave/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

// Resources and actions gated at the route level. Ownership and state rules
// live in the leave policy package; this only answers "may this role try".
const (
	ResourceLeave        = "leave"
	ResourceBalance      = "balance"
	ResourceAttachment   = "attachment"
	ResourceNotification = "notification"

	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionCancel  = "cancel"
	ActionApprove = "approve"
	ActionReadAll = "read_all"
	ActionManage  = "manage"
)

// DefaultPolicies grants a regular user self-service access; admin inherits
// every user permission through the role grouping.
var DefaultPolicies = [][]string{
	{string(domain.RoleUser), ResourceLeave, ActionCreate},
	{string(domain.RoleUser), ResourceLeave, ActionRead},
	{string(domain.RoleUser), ResourceLeave, ActionUpdate},
	{string(domain.RoleUser), ResourceLeave, ActionCancel},
	{string(domain.RoleUser), ResourceBalance, ActionRead},
	{string(domain.RoleUser), ResourceAttachment, ActionManage},
	{string(domain.RoleUser), ResourceNotification, ActionRead},
	{string(domain.RoleAdmin), ResourceLeave, ActionApprove},
	{string(domain.RoleAdmin), ResourceLeave, ActionReadAll},
	{string(domain.RoleAdmin), ResourceBalance, ActionManage},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(policies [][]string) error
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(role domain.Role) ([]string, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy(policies [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	if _, err := s.enforcer.AddGroupingPolicy(string(domain.RoleAdmin), string(domain.RoleUser)); err != nil {
		return err
	}
	for _, p := range policies {
		if _, err := s.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded", zap.Int("policies", len(policies)))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(string(req.Role), req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", string(req.Role)),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", string(req.Role)),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permissions(role domain.Role) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perms, err := s.enforcer.GetImplicitPermissionsForUser(string(role))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		out = append(out, p[1]+":"+p[2])
	}
	sort.Strings(out)
	return out, nil
}
