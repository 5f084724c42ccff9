// Package store is the only component that reads or writes persistent
// records. Handlers receive a *Store and pass the acting identity in
// explicitly; nothing here consults request state.
package store

import (
	"context"
	"fmt"

	"github.com/VasiliiKletkin/yatube-main/internal/storage"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Store struct {
	db    *gorm.DB
	media storage.Storage
}

// New wraps an open database. media may be nil when attachments are disabled.
func New(db *gorm.DB, media storage.Storage) *Store {
	return &Store{db: db, media: media}
}

// Media returns the attachment backend, possibly nil.
func (s *Store) Media() storage.Storage {
	return s.media
}

// ImageURL resolves a stored attachment key.
func (s *Store) ImageURL(key string) string {
	if key == "" || s.media == nil {
		return ""
	}
	return s.media.URL(key)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// removeMedia deletes attachment objects after the owning rows are gone.
// Failures are logged; the records are already consistent.
func (s *Store) removeMedia(ctx context.Context, keys ...string) {
	if s.media == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.media.Delete(ctx, key); err != nil {
			utils.Logger.Warn("failed to delete attachment", zap.String("key", key), zap.Error(err))
		}
	}
}
