package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"karaoke/internal/config"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// Provider defines the behavior for any song media backend.
type Provider interface {
	Put(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
}

// Store binds a provider to the configured bucket and public URL prefix.
type Store struct {
	backend Provider
	bucket  string
	baseURL string
}

// New selects a provider from configuration. Anything other than "s3" is
// served from the local filesystem.
func New(cfg *config.StorageConfig) (*Store, error) {
	var backend Provider
	switch cfg.Provider {
	case "s3":
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Region:           aws.String(cfg.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		if cfg.Endpoint != "" {
			s3Config.Endpoint = aws.String(cfg.Endpoint)
		}
		sess, err := session.NewSession(s3Config)
		if err != nil {
			return nil, fmt.Errorf("storage: s3 session: %w", err)
		}
		backend = NewS3Provider(sess)
	default:
		local, err := NewLocalProvider(cfg.Root)
		if err != nil {
			return nil, err
		}
		backend = local
	}
	return NewStore(backend, cfg.Bucket, cfg.CDNBaseURL), nil
}

// NewStore wraps an explicit provider.
func NewStore(backend Provider, bucket, baseURL string) *Store {
	return &Store{backend: backend, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes body under key and returns the public URL of the object.
func (s *Store) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	if err := s.backend.Put(ctx, s.bucket, key, body, contentType); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

// Open returns the stored object. The caller closes it.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, s.bucket, key)
}

// Remove deletes the object at key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.bucket, key)
}

// URL is the address clients fetch key from.
func (s *Store) URL(key string) string {
	if s.baseURL == "" {
		return "/" + s.bucket + "/" + key
	}
	return s.baseURL + "/" + key
}
