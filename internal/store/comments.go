package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateComment attaches text by authorID to postID, stamped with the current time.
func (s *Store) CreateComment(ctx context.Context, postID, authorID uint, text string) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verr := &ValidationError{}
		if strings.TrimSpace(text) == "" {
			verr.add("text", requiredMsg)
		}
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			verr.add("post", "Unknown post.")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			verr.add("author", "Unknown author.")
		}
		if err := verr.orNil(); err != nil {
			return err
		}

		comment.Created = time.Now()
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentsForPost returns every comment on postID, newest first.
func (s *Store) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
