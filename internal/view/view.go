// Package view assembles the HTML renderer: every page is the base layout
// plus all includes plus exactly one view file.
package view

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strconv"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/middleware"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-contrib/multitemplate"
)

const (
	layoutFile  = "layouts/base.html"
	includeGlob = "includes/*.html"
	viewsDir    = "views"
)

// Pages lists the names handlers render by.
var Pages = []string{
	"posts/index.html",
	"posts/group.html",
	"posts/profile.html",
	"posts/post.html",
	"posts/new_post.html",
	"posts/post_edit.html",
	"misc/404.html",
	"misc/500.html",
	"auth/login.html",
	"auth/signup.html",
}

// New parses every page from files. mediaURL turns a stored image key into a link.
func New(files fs.FS, mediaURL func(key string) string) (multitemplate.Render, error) {
	r := multitemplate.New()
	funcs := FuncMap(mediaURL)

	for _, page := range Pages {
		tmpl, err := template.New(path.Base(layoutFile)).
			Funcs(funcs).
			ParseFS(files, layoutFile, includeGlob, path.Join(viewsDir, page))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.Add(page, tmpl)
	}
	return r, nil
}

func FuncMap(mediaURL func(key string) string) template.FuncMap {
	if mediaURL == nil {
		mediaURL = func(key string) string { return key }
	}
	return template.FuncMap{
		"markdown": utils.RenderMarkdown,
		"mediaURL": mediaURL,
		"loginURL": middleware.LoginURL,
		"idString": func(id uint) string {
			return strconv.FormatUint(uint64(id), 10)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2 January 2006 15:04")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}
