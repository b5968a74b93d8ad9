package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
)

// SQLBucket stores objects in the storage_objects table next to the links.
type SQLBucket struct {
	db      *sqlx.DB
	bucket  string
	baseURL string
}

func NewSQLBucket(db *sqlx.DB, bucket, baseURL string) *SQLBucket {
	return &SQLBucket{db: db, bucket: bucket, baseURL: baseURL}
}

func (b *SQLBucket) Name() string { return b.bucket }

func (b *SQLBucket) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid object name %q", name)
	}
	query := `INSERT INTO storage_objects (bucket, name, content_type, data, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := b.db.ExecContext(ctx, query, b.bucket, name, contentType, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("upload %s/%s: %w", b.bucket, name, err)
	}
	return nil
}

func (b *SQLBucket) Download(ctx context.Context, name string) ([]byte, string, error) {
	var row struct {
		ContentType string `db:"content_type"`
		Data        []byte `db:"data"`
	}
	query := `SELECT content_type, data FROM storage_objects WHERE bucket = ? AND name = ?`
	err := b.db.GetContext(ctx, &row, query, b.bucket, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("download %s/%s: %w", b.bucket, name, err)
	}
	return row.Data, row.ContentType, nil
}

func (b *SQLBucket) Remove(ctx context.Context, name string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM storage_objects WHERE bucket = ? AND name = ?`, b.bucket, name); err != nil {
		return fmt.Errorf("remove %s/%s: %w", b.bucket, name, err)
	}
	return nil
}

func (b *SQLBucket) PublicURL(name string) string {
	return publicURL(b.baseURL, b.bucket, name)
}

var _ ports.Bucket = (*SQLBucket)(nil)
