package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"libapi/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible backend
// (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket, endpoint: cfg.Endpoint, secure: cfg.UseSSL}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Upload streams the payload under folder/name. With UniqueName set, a short
// random suffix keeps the object key collision-resistant; with Overwrite off
// and no unique name, an existing object under the key is an error.
func (m *minioStorage) Upload(ctx context.Context, r io.Reader, opt UploadOptions) (UploadResult, error) {
	name := opt.BaseName
	if name == "" {
		name = "unnamed_file"
	}
	if opt.UniqueName {
		name = uniqueName(name)
	}
	key := path.Join(opt.Folder, name)

	if !opt.Overwrite && !opt.UniqueName {
		if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err == nil {
			return UploadResult{}, fmt.Errorf("object %q already exists", key)
		}
	}

	putOpts := minio.PutObjectOptions{
		ContentType: opt.ContentType,
	}
	if len(opt.Tags) > 0 {
		putOpts.UserMetadata = map[string]string{"Tags": strings.Join(opt.Tags, ",")}
	}

	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		URL:      m.objectURL(key),
		PublicID: key,
		Bytes:    info.Size,
	}, nil
}

// Destroy removes an asset by its public identifier (the object key).
func (m *minioStorage) Destroy(ctx context.Context, publicID string) error {
	return m.client.RemoveObject(ctx, m.bucket, publicID, minio.RemoveObjectOptions{})
}

func (m *minioStorage) objectURL(key string) string {
	scheme := "http"
	if m.secure {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   m.endpoint,
		Path:   path.Join("/", m.bucket, key),
	}
	return u.String()
}

// uniqueName inserts an 8-char random suffix before the extension, e.g.
// "notes.pdf" becomes "notes-1a2b3c4d.pdf".
func uniqueName(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[:idx] + "-" + suffix + name[idx:]
	}
	return name + "-" + suffix
}
