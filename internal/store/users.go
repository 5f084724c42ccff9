package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// UserInput is a new account. Password is the plain text; it is hashed here.
type UserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

func (in UserInput) validate() *ValidationError {
	verr := &ValidationError{}
	switch {
	case in.Username == "":
		verr.add("username", requiredMsg)
	case utf8.RuneCountInString(in.Username) > 150:
		verr.add("username", "Ensure this value has at most 150 characters.")
	case !usernamePattern.MatchString(in.Username):
		verr.add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	case models.IsReservedUsername(in.Username):
		verr.add("username", "This username is reserved.")
	}
	if in.Password == "" {
		verr.add("password", requiredMsg)
	}
	return verr
}

func (s *Store) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := in.validate().orNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  in.Username,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return invalid("username", "A user with that username already exists.")
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if isDuplicate(err) {
				return invalid("username", "A user with that username already exists.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Authenticate checks a username and password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteUser removes an account together with its posts, the comments on
// those posts and the comments it wrote elsewhere.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	var images []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err)
		}

		var posts []models.Post
		if err := tx.Select("id", "image").Where("author_id = ?", id).Find(&posts).Error; err != nil {
			return err
		}
		postIDs := make([]uint, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			if p.Image != "" {
				images = append(images, p.Image)
			}
		}

		comments := tx.Where("author_id = ?", id)
		if len(postIDs) > 0 {
			comments = tx.Where("author_id = ? OR post_id IN ?", id, postIDs)
		}
		if err := comments.Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}
	s.removeMedia(ctx, images...)
	return nil
}

// ListAuthors returns users who have published at least one post.
func (s *Store) ListAuthors(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.Post{}).Select("author_id")).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
