package attachment

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

//go:generate mockgen -source=attachment_storage.go -destination=mock/attachment_storage_mock.go -package=mock
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedGet(ctx context.Context, key, downloadName string, expiry time.Duration) (string, error)
}

type minioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(client *minio.Client, bucket string) Storage {
	return &minioStorage{client: client, bucket: bucket}
}

func (s *minioStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *minioStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *minioStorage) PresignedGet(ctx context.Context, key, downloadName string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", downloadName))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
