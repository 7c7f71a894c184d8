package attachment_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"flexileave/internal/attachment"
	attachmenterrors "flexileave/internal/attachment/errors"
	"flexileave/internal/domain"
	"flexileave/internal/leave"
	leaveerrors "flexileave/internal/leave/errors"
	leaveMock "flexileave/internal/leave/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeStorage struct {
	putFn     func(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	presignFn func(ctx context.Context, key, name string, expiry time.Duration) (string, error)
	removed   []string
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.putFn != nil {
		return f.putFn(ctx, key, body, size, contentType)
	}
	return nil
}

func (f *fakeStorage) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStorage) PresignedGet(ctx context.Context, key, name string, expiry time.Duration) (string, error) {
	if f.presignFn != nil {
		return f.presignFn(ctx, key, name, expiry)
	}
	return "", nil
}

type fakeFileRepository struct {
	createFn       func(ctx context.Context, f *attachment.LeaveFile) error
	findByIDFn     func(ctx context.Context, id string) (*attachment.LeaveFile, error)
	listByLeaveFn  func(ctx context.Context, leaveID string) ([]attachment.LeaveFile, error)
	countByLeaveFn func(ctx context.Context, leaveID string) (int, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (f *fakeFileRepository) WithTx(*sql.Tx) attachment.Repository { return f }

func (f *fakeFileRepository) Create(ctx context.Context, file *attachment.LeaveFile) error {
	if f.createFn != nil {
		return f.createFn(ctx, file)
	}
	return nil
}

func (f *fakeFileRepository) FindByID(ctx context.Context, id string) (*attachment.LeaveFile, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFileRepository) ListByLeave(ctx context.Context, leaveID string) ([]attachment.LeaveFile, error) {
	if f.listByLeaveFn != nil {
		return f.listByLeaveFn(ctx, leaveID)
	}
	return nil, nil
}

func (f *fakeFileRepository) CountByLeave(ctx context.Context, leaveID string) (int, error) {
	if f.countByLeaveFn != nil {
		return f.countByLeaveFn(ctx, leaveID)
	}
	return 0, nil
}

func (f *fakeFileRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type attachmentDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *fakeFileRepository
	leaves  *leaveMock.MockRepository
	storage *fakeStorage
	service attachment.Service
}

func setupAttachmentTest(t *testing.T) *attachmentDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	d := &attachmentDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    &fakeFileRepository{},
		leaves:  leaveMock.NewMockRepository(ctrl),
		storage: &fakeStorage{},
	}
	d.service = attachment.NewService(db, d.repo, d.leaves, d.storage)
	return d
}

func (d *attachmentDeps) expectLockedLeave(l *leave.Leave) {
	d.leaves.EXPECT().WithTx(gomock.Any()).Return(d.leaves)
	d.leaves.EXPECT().FindByIDForUpdate(gomock.Any(), l.ID.String()).Return(l, nil)
}

func newLeave(ownerID uuid.UUID, status string) *leave.Leave {
	return &leave.Leave{ID: uuid.New(), OwnerID: ownerID, Status: status, LeaveType: "SickLeave"}
}

func pdf(content string) attachment.FileUpload {
	return attachment.FileUpload{
		Name:        "certificate.pdf",
		Size:        int64(len(content)),
		ContentType: "application/pdf",
		Body:        strings.NewReader(content),
	}
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	owner := domain.Actor{ID: ownerID.String(), Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		l := newLeave(ownerID, "pending")
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
		d.expectLockedLeave(l)
		d.repo.countByLeaveFn = func(context.Context, string) (int, error) { return 4, nil }

		var putKey string
		d.storage.putFn = func(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
			putKey = key
			data, _ := io.ReadAll(body)
			assert.Equal(t, "%PDF-1.4", string(data))
			assert.Equal(t, int64(8), size)
			assert.Equal(t, "application/pdf", contentType)
			return nil
		}
		d.repo.createFn = func(_ context.Context, f *attachment.LeaveFile) error {
			assert.Equal(t, putKey, f.ObjectKey)
			assert.Equal(t, ownerID, f.UploadedBy)
			return nil
		}

		resp, err := d.service.Upload(ctx, owner, l.ID.String(), pdf("%PDF-1.4"))

		assert.NoError(t, err)
		assert.Equal(t, "certificate.pdf", resp.Name)
		assert.True(t, strings.HasPrefix(putKey, "leaves/"+l.ID.String()+"/"))
		assert.True(t, strings.HasSuffix(putKey, ".pdf"))
		assert.Empty(t, d.storage.removed)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("limit reached", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		l := newLeave(ownerID, "pending")
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.expectLockedLeave(l)
		d.repo.countByLeaveFn = func(context.Context, string) (int, error) { return 5, nil }
		d.storage.putFn = func(context.Context, string, io.Reader, int64, string) error {
			t.Fatal("object must not be stored")
			return nil
		}

		_, err := d.service.Upload(ctx, owner, l.ID.String(), pdf("x"))

		assert.ErrorIs(t, err, leaveerrors.ErrTooManyAttachments)
	})

	t.Run("only the owner may attach", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		l := newLeave(ownerID, "pending")
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.expectLockedLeave(l)

		_, err := d.service.Upload(ctx, domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}, l.ID.String(), pdf("x"))

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})

	t.Run("decided request is closed", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		l := newLeave(ownerID, "approved")
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.expectLockedLeave(l)

		_, err := d.service.Upload(ctx, owner, l.ID.String(), pdf("x"))

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveFinalized)
	})

	t.Run("file checks run before the transaction", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		exe := pdf("MZ")
		exe.ContentType = "application/x-msdownload"
		_, err := d.service.Upload(ctx, owner, uuid.NewString(), exe)
		assert.ErrorIs(t, err, attachmenterrors.ErrUnsupportedFileType)

		big := pdf("x")
		big.Size = attachment.MaxFileSize + 1
		_, err = d.service.Upload(ctx, owner, uuid.NewString(), big)
		assert.ErrorIs(t, err, attachmenterrors.ErrFileTooLarge)

		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("persist failure removes the stored object", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		l := newLeave(ownerID, "pending")
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
		d.expectLockedLeave(l)
		d.repo.createFn = func(context.Context, *attachment.LeaveFile) error { return errors.New("insert failed") }

		_, err := d.service.Upload(ctx, owner, l.ID.String(), pdf("x"))

		assert.Error(t, err)
		assert.Len(t, d.storage.removed, 1)
	})
}

func TestAttachmentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	l := newLeave(ownerID, "approved")
	file := &attachment.LeaveFile{ID: uuid.New(), LeaveID: l.ID, Name: "scan.png", ObjectKey: "leaves/x/y.png"}

	t.Run("admin can download", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		d.repo.findByIDFn = func(context.Context, string) (*attachment.LeaveFile, error) { return file, nil }
		d.leaves.EXPECT().FindByID(gomock.Any(), l.ID.String()).Return(l, nil)
		d.storage.presignFn = func(_ context.Context, key, name string, expiry time.Duration) (string, error) {
			assert.Equal(t, file.ObjectKey, key)
			assert.Equal(t, "scan.png", name)
			assert.Equal(t, attachment.URLExpiry, expiry)
			return "https://files.local/signed", nil
		}

		resp, err := d.service.DownloadURL(ctx, domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}, file.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "https://files.local/signed", resp.URL)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		d.repo.findByIDFn = func(context.Context, string) (*attachment.LeaveFile, error) { return file, nil }
		d.leaves.EXPECT().FindByID(gomock.Any(), l.ID.String()).Return(l, nil)

		_, err := d.service.DownloadURL(ctx, domain.Actor{ID: uuid.NewString(), Role: domain.RoleUser}, file.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrNotVisible)
	})

	t.Run("missing attachment", func(t *testing.T) {
		d := setupAttachmentTest(t)
		defer d.db.Close()

		_, err := d.service.DownloadURL(ctx, domain.Actor{ID: ownerID.String(), Role: domain.RoleUser}, uuid.NewString())

		assert.ErrorIs(t, err, attachmenterrors.ErrAttachmentNotFound)
	})
}

func TestAttachmentService_Delete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	owner := domain.Actor{ID: ownerID.String(), Role: domain.RoleUser}

	d := setupAttachmentTest(t)
	defer d.db.Close()

	l := newLeave(ownerID, "pending")
	file := &attachment.LeaveFile{ID: uuid.New(), LeaveID: l.ID, ObjectKey: "leaves/a/b.pdf"}

	d.sqlMock.ExpectBegin()
	d.sqlMock.ExpectCommit()
	d.repo.findByIDFn = func(context.Context, string) (*attachment.LeaveFile, error) { return file, nil }
	d.expectLockedLeave(l)
	deleted := ""
	d.repo.deleteFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	err := d.service.Delete(ctx, owner, file.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, file.ID.String(), deleted)
	assert.Equal(t, []string{"leaves/a/b.pdf"}, d.storage.removed)
	assert.NoError(t, d.sqlMock.ExpectationsWereMet())
}
