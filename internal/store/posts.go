package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/forms"
	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostPreloads are the associations post listings render.
var PostPreloads = []string{"Author", "Group"}

// PostInput carries the fields a caller may set. Author and publication
// date are never part of it.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   *forms.Upload
}

func (s *Store) validatePost(tx *gorm.DB, in PostInput) *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Text) == "" {
		verr.add("text", requiredMsg)
	}
	if in.GroupID != nil {
		var n int64
		if err := tx.Model(&models.Group{}).Where("id = ?", *in.GroupID).Count(&n).Error; err != nil || n == 0 {
			verr.add("group", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if in.Image != nil && s.media == nil {
		verr.add("image", "Image uploads are disabled.")
	}
	return verr
}

// CreatePost stores a new post by authorID with the publication time set to now.
func (s *Store) CreatePost(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	var post *models.Post
	var savedKey string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verr := s.validatePost(tx, in)
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			verr.add("author", "Unknown author.")
		}
		if err := verr.orNil(); err != nil {
			return err
		}

		post = &models.Post{
			Text:     in.Text,
			PubDate:  time.Now(),
			AuthorID: authorID,
			GroupID:  in.GroupID,
		}
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}

		if in.Image != nil {
			key, err := s.saveImage(ctx, post.ID, in.Image)
			if err != nil {
				return err
			}
			savedKey = key
			post.Image = key
			if err := tx.Model(post).Update("image", key).Error; err != nil {
				return fmt.Errorf("attach image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.removeMedia(ctx, savedKey)
		return nil, err
	}
	return post, nil
}

// UpdatePost rewrites text, group and, when a new upload is given, the image.
// The author and publication date are left as they were.
func (s *Store) UpdatePost(ctx context.Context, postID uint, in PostInput) (*models.Post, error) {
	var post models.Post
	var savedKey, replacedKey string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			return notFound(err)
		}
		if err := s.validatePost(tx, in).orNil(); err != nil {
			return err
		}

		image := post.Image
		if in.Image != nil {
			key, err := s.saveImage(ctx, post.ID, in.Image)
			if err != nil {
				return err
			}
			savedKey = key
			replacedKey = post.Image
			image = key
		}

		err := tx.Model(&post).
			Select("text", "group_id", "image").
			Updates(map[string]any{
				"text":     in.Text,
				"group_id": in.GroupID,
				"image":    image,
			}).Error
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		return nil
	})
	if err != nil {
		s.removeMedia(ctx, savedKey)
		return nil, err
	}
	s.removeMedia(ctx, replacedKey)
	return s.PostByID(ctx, postID)
}

func (s *Store) saveImage(ctx context.Context, postID uint, up *forms.Upload) (string, error) {
	key := fmt.Sprintf("posts/%d/%s%s", postID, uuid.NewString(), up.Ext)
	if err := s.media.Save(ctx, key, up.Reader(), up.Size, up.ContentType); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// PostByAuthor finds post id only if it was written by username.
func (s *Store) PostByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	author, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	var post models.Post
	err = s.db.WithContext(ctx).
		Preload("Group").
		Where("id = ? AND author_id = ?", id, author.ID).
		First(&post).Error
	if err != nil {
		return nil, notFound(err)
	}
	post.Author = *author
	return &post, nil
}

func (s *Store) postsQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Post{}).Order("pub_date DESC, id DESC")
}

// PostsQuery is every post, newest first.
func (s *Store) PostsQuery(ctx context.Context) *gorm.DB {
	return s.postsQuery(ctx)
}

// GroupPostsQuery is the posts filed under groupID, newest first.
func (s *Store) GroupPostsQuery(ctx context.Context, groupID uint) *gorm.DB {
	return s.postsQuery(ctx).Where("group_id = ?", groupID)
}

// AuthorPostsQuery is the posts by authorID, newest first.
func (s *Store) AuthorPostsQuery(ctx context.Context, authorID uint) *gorm.DB {
	return s.postsQuery(ctx).Where("author_id = ?", authorID)
}

func (s *Store) CountAuthorPosts(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

// DeletePost removes a post and its comments.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err)
		}
		image = post.Image
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}
	s.removeMedia(ctx, image)
	return nil
}

// LatestPosts returns at most limit posts, newest first, with their author
// and group loaded. query narrows the set; nil means all posts.
func (s *Store) LatestPosts(ctx context.Context, query *gorm.DB, limit int) ([]models.Post, error) {
	if query == nil {
		query = s.PostsQuery(ctx)
	}
	var posts []models.Post
	err := query.Preload("Author").Preload("Group").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
