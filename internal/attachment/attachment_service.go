package attachment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	attachmenterrors "flexileave/internal/attachment/errors"
	"flexileave/internal/domain"
	"flexileave/internal/leave"
	leaveerrors "flexileave/internal/leave/errors"
	"flexileave/internal/leave/policy"
	"flexileave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxFileSize = 10 << 20
	URLExpiry   = 15 * time.Minute
)

var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

//go:generate mockgen -source=attachment_service.go -destination=mock/attachment_service_mock.go -package=mock
type Service interface {
	Upload(ctx context.Context, actor domain.Actor, leaveID string, file FileUpload) (AttachmentResponse, error)
	List(ctx context.Context, actor domain.Actor, leaveID string) ([]AttachmentResponse, error)
	DownloadURL(ctx context.Context, actor domain.Actor, id string) (DownloadURLResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	leaves  leave.Repository
	storage Storage
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, leaves leave.Repository, storage Storage, logger ...*zap.Logger) Service {
	l := zap.L().Named("attachment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.service")
	}
	return &service{db: db, repo: repo, leaves: leaves, storage: storage, logger: l}
}

func (s *service) Upload(ctx context.Context, actor domain.Actor, leaveID string, file FileUpload) (AttachmentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("upload attachment requested",
		zap.String("request_id", rid),
		zap.String("leave_id", leaveID),
		zap.String("name", file.Name),
		zap.Int64("size", file.Size),
	)

	if _, err := uuid.Parse(leaveID); err != nil {
		return AttachmentResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	uploader, err := uuid.Parse(actor.ID)
	if err != nil {
		return AttachmentResponse{}, leaveerrors.ErrInvalidOwnerID
	}
	ext, err := checkFile(file)
	if err != nil {
		return AttachmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("upload attachment begin tx failed", zap.Error(err))
		return AttachmentResponse{}, err
	}
	defer tx.Rollback()

	l, err := s.leaves.WithTx(tx).FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		return AttachmentResponse{}, mapLeaveError(err)
	}
	if err := requireEditable(actor, l); err != nil {
		return AttachmentResponse{}, err
	}

	qtx := s.repo.WithTx(tx)
	count, err := qtx.CountByLeave(ctx, leaveID)
	if err != nil {
		return AttachmentResponse{}, err
	}
	if err := policy.CheckAttachmentLimit(count, 1); err != nil {
		return AttachmentResponse{}, err
	}

	f := &LeaveFile{
		ID:          uuid.New(),
		LeaveID:     l.ID,
		Name:        path.Base(strings.TrimSpace(file.Name)),
		Size:        file.Size,
		ContentType: file.ContentType,
		UploadedBy:  uploader,
	}
	f.ObjectKey = fmt.Sprintf("leaves/%s/%s%s", leaveID, f.ID, ext)

	if err := s.storage.Put(ctx, f.ObjectKey, file.Body, file.Size, file.ContentType); err != nil {
		s.logger.Error("upload attachment put object failed", zap.String("object_key", f.ObjectKey), zap.Error(err))
		return AttachmentResponse{}, attachmenterrors.ErrStorageUnavailable
	}

	if err := qtx.Create(ctx, f); err != nil {
		s.removeObject(ctx, f.ObjectKey)
		s.logger.Error("upload attachment persist failed", zap.Error(err))
		return AttachmentResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.removeObject(ctx, f.ObjectKey)
		s.logger.Error("upload attachment commit failed", zap.Error(err))
		return AttachmentResponse{}, err
	}

	s.logger.Info("upload attachment success",
		zap.String("request_id", rid),
		zap.String("attachment_id", f.ID.String()),
		zap.String("leave_id", leaveID),
	)
	return mapToResponse(*f), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, leaveID string) ([]AttachmentResponse, error) {
	if _, err := uuid.Parse(leaveID); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.leaves.FindByID(ctx, leaveID)
	if err != nil {
		return nil, mapLeaveError(err)
	}
	if !policy.CanView(actor, l.OwnerID.String()) {
		return nil, leaveerrors.ErrNotVisible
	}

	files, err := s.repo.ListByLeave(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	resp := make([]AttachmentResponse, len(files))
	for i, f := range files {
		resp[i] = mapToResponse(f)
	}
	return resp, nil
}

func (s *service) DownloadURL(ctx context.Context, actor domain.Actor, id string) (DownloadURLResponse, error) {
	f, l, err := s.load(ctx, id)
	if err != nil {
		return DownloadURLResponse{}, err
	}
	if !policy.CanView(actor, l.OwnerID.String()) {
		return DownloadURLResponse{}, leaveerrors.ErrNotVisible
	}

	url, err := s.storage.PresignedGet(ctx, f.ObjectKey, f.Name, URLExpiry)
	if err != nil {
		s.logger.Error("presign attachment failed", zap.String("attachment_id", id), zap.Error(err))
		return DownloadURLResponse{}, attachmenterrors.ErrStorageUnavailable
	}
	return DownloadURLResponse{
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(URLExpiry).Format(time.RFC3339),
	}, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attachmenterrors.ErrInvalidAttachmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete attachment begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	f, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapFileError(err)
	}
	l, err := s.leaves.WithTx(tx).FindByIDForUpdate(ctx, f.LeaveID.String())
	if err != nil {
		return mapLeaveError(err)
	}
	if err := requireEditable(actor, l); err != nil {
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete attachment commit failed", zap.Error(err))
		return err
	}

	s.removeObject(ctx, f.ObjectKey)
	s.logger.Info("delete attachment success", zap.String("attachment_id", id))
	return nil
}

func (s *service) load(ctx context.Context, id string) (*LeaveFile, *leave.Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, attachmenterrors.ErrInvalidAttachmentID
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapFileError(err)
	}
	l, err := s.leaves.FindByID(ctx, f.LeaveID.String())
	if err != nil {
		return nil, nil, mapLeaveError(err)
	}
	return f, l, nil
}

// removeObject is best effort; an orphaned object costs storage only.
func (s *service) removeObject(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		s.logger.Warn("remove object failed", zap.String("object_key", key), zap.Error(err))
	}
}

// requireEditable allows attachment changes by the owner while the request
// is still pending.
func requireEditable(actor domain.Actor, l *leave.Leave) error {
	if policy.Status(l.Status) != policy.StatusPending {
		return leaveerrors.ErrLeaveFinalized
	}
	if !actor.Owns(l.OwnerID.String()) {
		return leaveerrors.ErrNotOwner
	}
	return nil
}

func checkFile(file FileUpload) (string, error) {
	if file.Body == nil || file.Size <= 0 || strings.TrimSpace(file.Name) == "" {
		return "", attachmenterrors.ErrFileRequired
	}
	if file.Size > MaxFileSize {
		return "", attachmenterrors.ErrFileTooLarge
	}
	ext, ok := allowedContentTypes[file.ContentType]
	if !ok {
		return "", attachmenterrors.ErrUnsupportedFileType
	}
	return ext, nil
}

func mapLeaveError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func mapFileError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attachmenterrors.ErrAttachmentNotFound
	}
	return err
}

func mapToResponse(f LeaveFile) AttachmentResponse {
	resp := AttachmentResponse{
		ID:          f.ID.String(),
		LeaveID:     f.LeaveID.String(),
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		UploadedBy:  f.UploadedBy.String(),
	}
	if !f.CreatedAt.IsZero() {
		resp.CreatedAt = f.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
