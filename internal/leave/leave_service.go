package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flexileave/internal/balance"
	"flexileave/internal/domain"
	"flexileave/internal/events"
	leaveerrors "flexileave/internal/leave/errors"
	"flexileave/internal/leave/policy"
	"flexileave/internal/messaging/kafka"
	"flexileave/internal/shared/contextutil"
	"flexileave/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referenceSequence = "leave_reference"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Validate(ctx context.Context, actor domain.Actor, req ValidateLeaveRequest) (ValidationResponse, error)
	ListMine(ctx context.Context, actor domain.Actor, status string) ([]LeaveResponse, error)
	ListPendingForApproval(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, rejectionReason string) (LeaveResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	balances   balance.Repository
	balanceSvc balance.Service
	counter    counter.Repository
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	balanceSvc balance.Service,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		balances:   balances,
		balanceSvc: balanceSvc,
		counter:    counterRepo,
		outbox:     outboxRepo,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	ownerUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidOwnerID
	}
	draft, err := buildDraft(req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.EmergencyContact, req.EmergencyPhone)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ownerID := ownerUUID.String()
	if err := qtx.LockOwner(ctx, ownerID); err != nil {
		s.logger.Error("create leave owner lock failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.validateInTx(ctx, tx, qtx, ownerID, draft); err != nil {
		s.logger.Warn("create leave validation failed",
			zap.String("request_id", rid),
			zap.String("actor_id", actor.ID),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	leaveType, _ := draft.LeaveType()
	period, _ := draft.Period()

	reference, err := s.nextReference(ctx, tx, period.Start)
	if err != nil {
		s.logger.Error("create leave reference failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	contact, phone := draft.EmergencyContact()
	l := &Leave{
		ID:               uuid.New(),
		Reference:        reference,
		OwnerID:          ownerUUID,
		LeaveType:        leaveType.String(),
		StartDate:        period.Start,
		EndDate:          period.End,
		Days:             period.Days(),
		Reason:           draft.Reason(),
		Status:           string(policy.StatusPending),
		EmergencyContact: optional(contact),
		EmergencyPhone:   optional(phone),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, events.LeaveSubmitted, l, actor.ID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("reference", l.Reference),
		zap.String("owner_id", actor.ID),
	)

	return mapToResponse(*l, 0), nil
}

func (s *service) Validate(ctx context.Context, actor domain.Actor, req ValidateLeaveRequest) (ValidationResponse, error) {
	draft, err := buildDraft(req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.EmergencyContact, req.EmergencyPhone)
	if err != nil {
		return ValidationResponse{}, err
	}
	draft = draft.WithID(req.LeaveID).WithAttachments(req.Attachments)

	balances, err := s.balanceSvc.GetBalances(ctx, actor.ID)
	if err != nil {
		return ValidationResponse{}, err
	}
	active, err := s.repo.ListActiveByOwner(ctx, actor.ID)
	if err != nil {
		return ValidationResponse{}, err
	}

	result := policy.Validate(draft, toExisting(active), balances)
	errs := result.Errors
	if errs == nil {
		errs = []policy.FieldError{}
	}
	return ValidationResponse{Valid: result.OK(), Days: draft.Days(), Errors: errs}, nil
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor, status string) ([]LeaveResponse, error) {
	filter := ""
	if status != "" {
		st, ok := policy.ParseStatus(status)
		if !ok {
			return nil, leaveerrors.ErrInvalidStatusFilter
		}
		filter = st.String()
	}

	leaves, err := s.repo.ListByOwner(ctx, actor.ID, filter)
	if err != nil {
		return nil, err
	}
	return s.mapToListResponse(ctx, leaves)
}

func (s *service) ListPendingForApproval(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	if !actor.IsAdmin() {
		return nil, leaveerrors.ErrAdminRequired
	}
	leaves, err := s.repo.ListPendingExcluding(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.mapToListResponse(ctx, leaves)
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !policy.CanView(actor, l.OwnerID.String()) {
		return LeaveResponse{}, leaveerrors.ErrNotVisible
	}

	count, err := s.repo.CountAttachments(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l, count), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	draft, err := buildDraft(req.LeaveType, req.StartDate, req.EndDate, req.Reason, req.EmergencyContact, req.EmergencyPhone)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := policy.Authorize(policy.ActionEdit, actor, l.Subject(), time.Now().UTC()); err != nil {
		s.logger.Warn("update leave not allowed",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	ownerID := l.OwnerID.String()
	if err := qtx.LockOwner(ctx, ownerID); err != nil {
		return LeaveResponse{}, err
	}

	count, err := qtx.CountAttachments(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	draft = draft.WithID(id).WithAttachments(count)

	if err := s.validateInTx(ctx, tx, qtx, ownerID, draft); err != nil {
		s.logger.Warn("update leave validation failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	leaveType, _ := draft.LeaveType()
	period, _ := draft.Period()
	contact, phone := draft.EmergencyContact()

	l.LeaveType = leaveType.String()
	l.StartDate = period.Start
	l.EndDate = period.End
	l.Days = period.Days()
	l.Reason = draft.Reason()
	l.EmergencyContact = optional(contact)
	l.EmergencyPhone = optional(phone)

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, events.LeaveUpdated, l, actor.ID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("update leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
	)

	return mapToResponse(*l, count), nil
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transitionLeaveStatus(ctx, actor, id, policy.ActionCancel, "")
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transitionLeaveStatus(ctx, actor, id, policy.ActionApprove, "")
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, rejectionReason string) (LeaveResponse, error) {
	return s.transitionLeaveStatus(ctx, actor, id, policy.ActionReject, rejectionReason)
}

func (s *service) transitionLeaveStatus(ctx context.Context, actor domain.Actor, id string, action policy.Action, rejectionReason string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("transition leave status requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("action", string(action)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	now := time.Now().UTC()
	if err := policy.Authorize(action, actor, l.Subject(), now); err != nil {
		s.logger.Warn("transition leave status not allowed",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	var eventType string
	switch action {
	case policy.ActionApprove:
		eventType = events.LeaveApproved
		if err := s.debitBalance(ctx, tx, l); err != nil {
			return LeaveResponse{}, err
		}
	case policy.ActionReject:
		eventType = events.LeaveRejected
		reason, err := policy.RequireRejectionReason(rejectionReason)
		if err != nil {
			return LeaveResponse{}, err
		}
		l.RejectionReason = &reason
	case policy.ActionCancel:
		eventType = events.LeaveCancelled
	}

	l.Status = string(policy.Transition(action))
	if action != policy.ActionCancel {
		decidedBy, err := uuid.Parse(actor.ID)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidOwnerID
		}
		l.DecidedBy = &decidedBy
		l.DecidedAt = &now
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("transition leave status persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", l.Status),
			zap.Error(err),
		)
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, eventType, l, actor.ID); err != nil {
		return LeaveResponse{}, err
	}

	count, err := qtx.CountAttachments(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition leave status commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if action == policy.ActionApprove && s.balanceSvc != nil {
		s.balanceSvc.Invalidate(ctx, l.OwnerID.String())
	}
	s.logger.Info("transition leave status success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", l.Status),
	)
	return mapToResponse(*l, count), nil
}

// validateInTx reads balances and active requests inside tx so the check
// and the following write see the same snapshot under the owner lock.
func (s *service) validateInTx(ctx context.Context, tx *sql.Tx, qtx Repository, ownerID string, draft policy.Draft) error {
	rows, err := s.balances.WithTx(tx).FindByUser(ctx, ownerID)
	if err != nil {
		return err
	}
	active, err := qtx.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return policy.Validate(draft, toExisting(active), balance.ToBalances(rows)).Err()
}

func (s *service) debitBalance(ctx context.Context, tx *sql.Tx, l *Leave) error {
	leaveType, ok := policy.ParseLeaveType(l.LeaveType)
	if !ok || !leaveType.RequiresBalance() {
		return nil
	}
	debited, err := s.balances.WithTx(tx).Decrement(ctx, l.OwnerID.String(), leaveType.String(), l.Days)
	if err != nil {
		s.logger.Error("approve leave balance debit failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return err
	}
	if !debited {
		return leaveerrors.ErrInsufficientBalance
	}
	return nil
}

func (s *service) nextReference(ctx context.Context, tx *sql.Tx, start time.Time) (string, error) {
	year := start.Year()
	seq, err := s.counter.WithTx(tx).Next(ctx, referenceSequence, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LV-%d-%06d", year, seq), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, l *Leave, actorID string) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)

	event := events.LeaveStatusChangedEvent{
		EventType:  eventType,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		Reference:  l.Reference,
		OwnerID:    l.OwnerID.String(),
		ActorID:    actorID,
		LeaveType:  l.LeaveType,
		StartDate:  policy.FormatDate(l.StartDate),
		EndDate:    policy.FormatDate(l.EndDate),
		Days:       l.Days,
		Status:     l.Status,
		OccurredAt: time.Now().UTC(),
	}
	if l.RejectionReason != nil {
		event.RejectionReason = *l.RejectionReason
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveStatusChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// buildDraft parses the raw form fields. Blank dates stay unset so the
// policy reports them as missing; malformed dates fail outright.
func buildDraft(leaveType, startDate, endDate, reason, contact, phone string) (policy.Draft, error) {
	var badFields []policy.FieldError
	parse := func(field, v string) time.Time {
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}
		}
		t, err := policy.ParseDate(v)
		if err != nil {
			badFields = append(badFields, policy.FieldError{Field: field, Message: "date must use the YYYY-MM-DD format"})
		}
		return t
	}
	start := parse(policy.FieldStartDate, startDate)
	end := parse(policy.FieldEndDate, endDate)
	if len(badFields) > 0 {
		return policy.Draft{}, leaveerrors.ErrInvalidDateFormat.WithDetails(badFields)
	}

	return policy.NewDraft().
		WithLeaveType(leaveType).
		WithPeriod(start, end).
		WithReason(reason).
		WithEmergencyContact(contact, phone), nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func mapToResponse(l Leave, attachments int) LeaveResponse {
	leaveType, _ := policy.ParseLeaveType(l.LeaveType)
	resp := LeaveResponse{
		ID:               l.ID.String(),
		Reference:        l.Reference,
		OwnerID:          l.OwnerID.String(),
		LeaveType:        l.LeaveType,
		LeaveTypeLabel:   leaveType.Label(),
		StartDate:        policy.FormatDate(l.StartDate),
		EndDate:          policy.FormatDate(l.EndDate),
		Days:             l.Days,
		Reason:           l.Reason,
		Status:           l.Status,
		RejectionReason:  l.RejectionReason,
		EmergencyContact: l.EmergencyContact,
		EmergencyPhone:   l.EmergencyPhone,
		Attachments:      attachments,
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func (s *service) mapToListResponse(ctx context.Context, leaves []Leave) ([]LeaveResponse, error) {
	ids := make([]string, len(leaves))
	for i, l := range leaves {
		ids[i] = l.ID.String()
	}
	counts, err := s.repo.CountAttachmentsByLeave(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l, counts[ids[i]])
	}
	return resp, nil
}
