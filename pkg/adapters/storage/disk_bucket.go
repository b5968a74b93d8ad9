package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wadjakorntonsri/trimlink/pkg/ports"
)

// DiskBucket stores objects as files under dir/bucket. The content type is
// kept in a sidecar file.
type DiskBucket struct {
	dir     string
	bucket  string
	baseURL string
}

func NewDiskBucket(dir, bucket, baseURL string) (*DiskBucket, error) {
	root := filepath.Join(dir, bucket)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &DiskBucket{dir: root, bucket: bucket, baseURL: baseURL}, nil
}

func (b *DiskBucket) Name() string { return b.bucket }

func (b *DiskBucket) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid object name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(b.dir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("upload %s/%s: object exists", b.bucket, name)
	}
	if err := os.WriteFile(path+".type", []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("upload %s/%s: %w", b.bucket, name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		os.Remove(path + ".type")
		return fmt.Errorf("upload %s/%s: %w", b.bucket, name, err)
	}
	return nil
}

func (b *DiskBucket) Download(ctx context.Context, name string) ([]byte, string, error) {
	if !validName(name) {
		return nil, "", ErrNotFound
	}
	path := filepath.Join(b.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("download %s/%s: %w", b.bucket, name, err)
	}
	contentType := "application/octet-stream"
	if ct, err := os.ReadFile(path + ".type"); err == nil {
		contentType = string(ct)
	}
	return data, contentType, nil
}

func (b *DiskBucket) Remove(ctx context.Context, name string) error {
	if !validName(name) {
		return nil
	}
	path := filepath.Join(b.dir, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s/%s: %w", b.bucket, name, err)
	}
	os.Remove(path + ".type")
	return nil
}

func (b *DiskBucket) PublicURL(name string) string {
	return publicURL(b.baseURL, b.bucket, name)
}

var _ ports.Bucket = (*DiskBucket)(nil)
