package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type Options struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Region       string
	UseSSL       bool
	Bucket       string
	CreateBucket bool
}

var _ domain.ObjectStore = (*S3Storage)(nil)

// S3Storage is an S3-compatible object store backed by minio-go.
type S3Storage struct {
	client *minio.Client
	logger *logger.Logger
}

func NewS3Storage(ctx context.Context, opts Options, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 storage",
		zap.String("endpoint", opts.Endpoint),
		zap.String("bucket", opts.Bucket),
		zap.String("region", opts.Region),
		zap.Bool("use_ssl", opts.UseSSL))

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		log.Error("S3Storage: failed to create client", zap.String("endpoint", opts.Endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create s3 client for endpoint %s: %w", opts.Endpoint, err)
	}

	s := &S3Storage{client: client, logger: log.Named("S3Storage")}
	if opts.CreateBucket {
		if err := s.ensureBucket(ctx, opts.Bucket, opts.Region); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *S3Storage) ensureBucket(ctx context.Context, bucket, region string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		s.logger.Info("Bucket already exists", zap.String("bucket", bucket))
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to make bucket %s: %w", bucket, err)
	}
	s.logger.Info("Bucket created", zap.String("bucket", bucket))
	return nil
}

func (s *S3Storage) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	info, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}
	s.logger.Debug("Object uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("key", info.Key),
		zap.String("etag", info.ETag),
		zap.Int64("size", info.Size))
	return nil
}

// PresignedPut signs a PUT for key that requires the given Content-Type header.
func (s *S3Storage) PresignedPut(ctx context.Context, bucket, key string, expiry time.Duration, contentType string) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := s.client.PresignHeader(ctx, http.MethodPut, bucket, key, expiry, nil, headers)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

func (s *S3Storage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(err, bucket, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(err, bucket, key)
	}
	return data, nil
}

func (s *S3Storage) Remove(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Storage) mapErr(err error, bucket, key string) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("%w: %s/%s", domain.ErrObjectNotFound, bucket, key)
	}
	return fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
