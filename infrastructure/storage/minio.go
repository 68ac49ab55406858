package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ObjectStorage issues short-lived, single-object credentials. The service
// never proxies file bytes itself.
type ObjectStorage interface {
	IssueDownloadURL(ctx context.Context, storageKey, responseFileName, mimeType string) (string, int, error)
	IssueUploadURL(ctx context.Context, storageKey, mimeType string) (string, int, error)
	RemoveObject(ctx context.Context, storageKey string) error
}

type MinioStorage struct {
	client *minio.Client
	logger *zap.Logger
	bucket string
	ttl    time.Duration
}

var _ ObjectStorage = (*MinioStorage)(nil)

func ConnectMinio(cfg *config.Config, log *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize object storage client")
	}

	storage := &MinioStorage{
		client: client,
		logger: log,
		bucket: cfg.Storage.Bucket,
		ttl:    cfg.GetPresignTTL(),
	}

	if err := storage.ensureBucket(context.Background()); err != nil {
		return nil, err
	}

	log.Info("object storage client initialized",
		zap.String("endpoint", cfg.Storage.Endpoint),
		zap.String("bucket", cfg.Storage.Bucket),
	)
	return storage, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, "error checking if bucket exists")
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, "error creating bucket")
		}
		s.logger.Info("bucket created", zap.String("bucket", s.bucket))
	}
	return nil
}

// IssueDownloadURL presigns a GET for a single object. The response headers
// pin the browser-facing file name and content type.
func (s *MinioStorage) IssueDownloadURL(ctx context.Context, storageKey, responseFileName, mimeType string) (string, int, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf(`attachment; filename="%s"`, sanitizeDispositionName(responseFileName)))
	if mimeType != "" {
		reqParams.Set("response-content-type", mimeType)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, storageKey, s.ttl, reqParams)
	if err != nil {
		s.logger.Error("failed to presign download", zap.String("storageKey", storageKey), zap.Error(err))
		return "", 0, errors.Wrap(err, "failed to presign download URL")
	}
	return presigned.String(), int(s.ttl.Seconds()), nil
}

// IssueUploadURL presigns a PUT for a single object and binds server-side
// encryption at rest into the signature.
func (s *MinioStorage) IssueUploadURL(ctx context.Context, storageKey, mimeType string) (string, int, error) {
	extraHeaders := http.Header{}
	extraHeaders.Set("X-Amz-Server-Side-Encryption", "AES256")
	if mimeType != "" {
		extraHeaders.Set("Content-Type", mimeType)
	}

	presigned, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, storageKey, s.ttl, url.Values{}, extraHeaders)
	if err != nil {
		s.logger.Error("failed to presign upload", zap.String("storageKey", storageKey), zap.Error(err))
		return "", 0, errors.Wrap(err, "failed to presign upload URL")
	}
	return presigned.String(), int(s.ttl.Seconds()), nil
}

func (s *MinioStorage) RemoveObject(ctx context.Context, storageKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
	return errors.Wrap(err, "failed to remove object")
}

// BuildStorageKey produces a server-generated key namespaced by room. The
// key is never client-supplied, which rules out traversal and collisions.
func BuildStorageKey(roomID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", roomID, uuid.NewString(), ext)
}

func sanitizeDispositionName(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	if name == "" {
		name = "download"
	}
	return name
}
