package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CurrentUserKey = "user"
	sessionUserKey = "user_id"
	LoginPath      = "/auth/login/"
)

// UserLoader resolves the id kept in the session.
type UserLoader interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser reads the session once per request and stores the identity
// under CurrentUserKey. Stale ids are dropped from the session.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(sessionUserKey).(uint); ok {
			user, err := users.UserByID(c.Request.Context(), id)
			if err == nil {
				c.Set(CurrentUserKey, user)
			} else {
				session.Delete(sessionUserKey)
				if err := session.Save(); err != nil {
					utils.Logger.Warn("failed to clear stale session user", zap.Uint("user_id", id), zap.Error(err))
				}
			}
		}
		c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page, remembering where they were going.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL builds the login redirect for a protected path.
func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// CurrentUser returns the identity LoadUser found, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Login binds user to the session.
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserKey, user.ID)
	c.Set(CurrentUserKey, user)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
