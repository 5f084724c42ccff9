package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/VasiliiKletkin/yatube-main/internal/forms"
	"github.com/VasiliiKletkin/yatube-main/internal/middleware"
	"github.com/VasiliiKletkin/yatube-main/internal/services"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const captchaSessionKey = "captcha_answer"

type AuthHandler struct {
	store   *store.Store
	captcha services.Captcha
}

func NewAuthHandler(s *store.Store, captcha services.Captcha) *AuthHandler {
	return &AuthHandler{store: s, captcha: captcha}
}

// renderSignup issues a fresh captcha every time the form is shown.
func (h *AuthHandler) renderSignup(c *gin.Context, code int, form *forms.Form) {
	question, answer := h.captcha.Challenge()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, answer)
	if err := session.Save(); err != nil {
		ServerError(c, err)
		return
	}
	Render(c, code, "auth/signup.html", gin.H{"Form": form, "Captcha": question})
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	h.renderSignup(c, http.StatusOK, forms.SignupSchema().Unbound(nil))
}

func (h *AuthHandler) Signup(c *gin.Context) {
	form := forms.SignupSchema().Bind(
		postedValues(c, "first_name", "last_name", "username", "password", "password2", "captcha"),
		nil,
	)

	session := sessions.Default(c)
	expected, hasCaptcha := session.Get(captchaSessionKey).(int)
	session.Delete(captchaSessionKey)

	if form.IsValid() {
		if !hasCaptcha || utils.StringToInt(form.Value("captcha")) != expected {
			form.Errors.Add("captcha", "Wrong answer, try again.")
		}
		if form.Value("password") != form.Value("password2") {
			form.Errors.Add("password2", "The two password fields didn't match.")
		}
	}
	if len(form.Errors) > 0 {
		h.renderSignup(c, http.StatusBadRequest, form)
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), store.UserInput{
		Username:  form.Value("username"),
		Password:  form.Value("password"),
		FirstName: form.Value("first_name"),
		LastName:  form.Value("last_name"),
	})
	if err != nil {
		if verr, ok := store.IsValidation(err); ok {
			form.Errors.Merge(verr.Fields)
			h.renderSignup(c, http.StatusBadRequest, form)
			return
		}
		ServerError(c, err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		ServerError(c, err)
		return
	}
	utils.Logger.Info("user signed up", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	user, err := h.store.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
				"Error":    "Please enter a correct username and password.",
				"Username": username,
				"Next":     next,
			})
			return
		}
		ServerError(c, err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
