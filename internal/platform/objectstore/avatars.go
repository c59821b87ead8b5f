// Package objectstore stores user avatars in a MinIO/S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fastcontacts/contacts-api/internal/config"
)

// Errors returned by the avatar store.
var (
	// ErrUnsupportedType is returned when the upload's content type is not
	// in the allow-list.
	ErrUnsupportedType = errors.New("unsupported avatar content type")

	// ErrTooLarge is returned when the upload exceeds the configured size cap.
	ErrTooLarge = errors.New("avatar exceeds maximum size")
)

// allowedContentTypes maps accepted avatar MIME types to file extensions.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarStore uploads avatar images to an object-storage bucket and hands
// back their public URLs.
type AvatarStore struct {
	cfg    config.StorageConfig
	client *minio.Client
}

// New creates and initializes the object-storage client. The endpoint may
// carry a scheme, which selects TLS; the bucket must already exist
// (fail-fast check at startup).
func New(ctx context.Context, cfg config.StorageConfig) (*AvatarStore, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &AvatarStore{cfg: cfg, client: client}, nil
}

// Upload streams an avatar into the bucket under a per-user key and returns
// its public URL. The content type must be in the allow-list and size must
// be positive and within the configured cap.
func (s *AvatarStore) Upload(ctx context.Context, userID uuid.UUID, contentType string, size int64, r io.Reader) (string, error) {
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	if size <= 0 || size > s.cfg.MaxAvatarBytes {
		return "", ErrTooLarge
	}

	// Key shape: avatars/<userID>/<uuid>.<ext>. A fresh object name per
	// upload sidesteps CDN caching of a replaced avatar.
	key := path.Join("avatars", userID.String(), uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return base + "/" + key, nil
}
