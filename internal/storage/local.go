package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider keeps buckets as directories under RootPath.
type LocalProvider struct {
	RootPath string
}

func NewLocalProvider(root string) (*LocalProvider, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &LocalProvider{RootPath: root}, nil
}

func (l *LocalProvider) path(bucket, key string) (string, error) {
	bucketPath := filepath.Join(l.RootPath, bucket)
	p := filepath.Join(bucketPath, filepath.FromSlash(key))
	if p != bucketPath && !strings.HasPrefix(p, bucketPath+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: key %q escapes bucket", key)
	}
	return p, nil
}

func (l *LocalProvider) Put(_ context.Context, bucket, key string, body io.ReadSeeker, _ string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

func (l *LocalProvider) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := l.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return f, err
}

func (l *LocalProvider) Delete(_ context.Context, bucket, key string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
