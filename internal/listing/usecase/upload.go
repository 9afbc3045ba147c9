package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/imaging"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultImageExtension = ".jpg"
	presignContentType    = "image/jpeg"
)

type UploadConfig struct {
	Bucket        string
	PublicHost    string
	PresignExpiry time.Duration
}

// UploadCoordinator moves listing images into the object store. Images are
// always moderated before they get a public URL.
type UploadCoordinator struct {
	store  domain.ObjectStore
	gate   *ModerationGate
	cfg    UploadConfig
	newKey func() string
	logger *logger.Logger
}

func NewUploadCoordinator(store domain.ObjectStore, gate *ModerationGate, cfg UploadConfig, log *logger.Logger) *UploadCoordinator {
	return &UploadCoordinator{
		store:  store,
		gate:   gate,
		cfg:    cfg,
		newKey: func() string { return uuid.New().String() },
		logger: log.Named("UploadCoordinator"),
	}
}

// ObjectURL is the public address of key in the configured bucket.
func (c *UploadCoordinator) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", c.cfg.Bucket, c.cfg.PublicHost, key)
}

// Upload stores img under a fresh key and returns its URL. A missing or empty
// image yields an empty URL and no store call.
func (c *UploadCoordinator) Upload(ctx context.Context, img *domain.ImageUpload) (string, error) {
	if img.Empty() {
		return "", nil
	}

	info, err := imaging.Inspect(img.Data)
	if err != nil {
		return "", fmt.Errorf("%w: image %q: %v", domain.ErrValidationFailed, img.Filename, err)
	}

	key := c.newKey() + imageExtension(img.Filename)

	if err := c.gate.CheckImage(ctx, img.Data); err != nil {
		return "", err
	}

	if err := c.store.Put(ctx, c.cfg.Bucket, key, img.Data, info.MIME); err != nil {
		c.logger.Error("UploadCoordinator.Upload: put failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: upload image: %v", domain.ErrUpstream, err)
	}

	url := c.ObjectURL(key)
	c.logger.Info("UploadCoordinator.Upload: image stored",
		zap.String("key", key), zap.String("content_type", info.MIME), zap.Int("size_bytes", len(img.Data)))
	return url, nil
}

// AttachUploaded accepts a URL previously issued by PresignUpload. The object
// is fetched and moderated before the URL may be referenced by a listing, and
// removed if it does not pass.
func (c *UploadCoordinator) AttachUploaded(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", nil
	}

	prefix := c.ObjectURL("")
	key := strings.TrimPrefix(imageURL, prefix)
	if !strings.HasPrefix(imageURL, prefix) || key == "" || strings.ContainsAny(key, "/?#") {
		return "", fmt.Errorf("%w: image url %q was not issued by this service", domain.ErrValidationFailed, imageURL)
	}

	data, err := c.store.Get(ctx, c.cfg.Bucket, key)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return "", fmt.Errorf("%w: nothing was uploaded to %q", domain.ErrValidationFailed, imageURL)
	}
	if err != nil {
		return "", fmt.Errorf("%w: fetch uploaded image: %v", domain.ErrUpstream, err)
	}

	if _, err := imaging.Inspect(data); err != nil {
		c.discard(ctx, key)
		return "", fmt.Errorf("%w: uploaded object %q: %v", domain.ErrValidationFailed, key, err)
	}
	if err := c.gate.CheckImage(ctx, data); err != nil {
		if errors.Is(err, domain.ErrModerationRejected) {
			c.discard(ctx, key)
		}
		return "", err
	}
	return imageURL, nil
}

// PresignUpload issues a write-only URL for a fresh .jpg key.
func (c *UploadCoordinator) PresignUpload(ctx context.Context) (*domain.UploadAuthorization, error) {
	key := c.newKey() + defaultImageExtension

	uploadURL, err := c.store.PresignedPut(ctx, c.cfg.Bucket, key, c.cfg.PresignExpiry, presignContentType)
	if err != nil {
		c.logger.Error("UploadCoordinator.PresignUpload: presign failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: presign upload: %v", domain.ErrUpstream, err)
	}

	return &domain.UploadAuthorization{
		UploadURL: uploadURL,
		FileURL:   c.ObjectURL(key),
	}, nil
}

func (c *UploadCoordinator) discard(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, c.cfg.Bucket, key); err != nil {
		c.logger.Warn("UploadCoordinator: failed to remove rejected object", zap.String("key", key), zap.Error(err))
	}
}

func imageExtension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext == "" || ext == "." {
		return defaultImageExtension
	}
	return ext
}
