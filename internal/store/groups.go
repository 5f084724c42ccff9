package store

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type GroupInput struct {
	Title       string
	Slug        string
	Description *string
}

func (in GroupInput) validate() *ValidationError {
	verr := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.add("title", requiredMsg)
	case utf8.RuneCountInString(title) > 200:
		verr.add("title", "Ensure this value has at most 200 characters.")
	}
	switch {
	case in.Slug == "":
		verr.add("slug", requiredMsg)
	case len(in.Slug) > 200:
		verr.add("slug", "Ensure this value has at most 200 characters.")
	case !slugPattern.MatchString(in.Slug):
		verr.add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return verr
}

// CreateGroup inserts a group. A slug already in use yields a ValidationError
// and leaves the table untouched.
func (s *Store) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	if err := in.validate().orNil(); err != nil {
		return nil, err
	}

	group := &models.Group{
		Title:       strings.TrimSpace(in.Title),
		Slug:        in.Slug,
		Description: in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Group{}).Where("slug = ?", in.Slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return invalid("slug", "Group with this Slug already exists.")
		}
		if err := tx.Create(group).Error; err != nil {
			if isDuplicate(err) {
				return invalid("slug", "Group with this Slug already exists.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) GroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

// GroupExists is the lookup the post form uses for its group choice.
func (s *Store) GroupExists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

// ListGroups returns every group ordered by title, for form choices.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup removes a group. Its posts survive with no group.
func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}
