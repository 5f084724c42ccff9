// Package storage keeps post image attachments outside the database. Records
// only hold the key; URL turns it into something a browser can fetch.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/VasiliiKletkin/yatube-main/internal/config"
)

type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New picks a backend from configuration.
func New(ctx context.Context, cfg config.Config) (Storage, error) {
	switch cfg.MediaBackend {
	case "", "local":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Storage(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return key, nil
}
