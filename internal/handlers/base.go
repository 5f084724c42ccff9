package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/VasiliiKletkin/yatube-main/internal/middleware"
	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render injects the values every page needs and renders name.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := currentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.RequestURI()

	c.HTML(code, name, obj)
}

// NotFound renders the 404 page for the requested path.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "misc/404.html", gin.H{"Path": c.Request.URL.Path})
	c.Abort()
}

// ServerError logs err and renders the generic 500 page. Nothing about err reaches the client.
func ServerError(c *gin.Context, err error) {
	if err != nil {
		utils.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		_ = c.Error(err)
	}
	Render(c, http.StatusInternalServerError, "misc/500.html", nil)
	c.Abort()
}

// Recovered is the panic fallback used by middleware.Recovery.
func Recovered(c *gin.Context) {
	ServerError(c, nil)
}

// fail maps a store error to a response: missing records become 404, anything else 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		NotFound(c)
		return
	}
	ServerError(c, err)
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// postedValues collects the named form fields of a POST.
func postedValues(c *gin.Context, names ...string) map[string]string {
	values := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := c.GetPostForm(name); ok {
			values[name] = v
		}
	}
	return values
}

// postedFiles collects uploaded files. Non-multipart bodies have none.
func postedFiles(c *gin.Context, names ...string) map[string]*multipart.FileHeader {
	files := map[string]*multipart.FileHeader{}
	for _, name := range names {
		fh, err := c.FormFile(name)
		if err == nil && fh != nil && fh.Size > 0 {
			files[name] = fh
		}
	}
	return files
}
