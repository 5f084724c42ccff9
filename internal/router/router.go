package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/VasiliiKletkin/yatube-main/internal/access"
	"github.com/VasiliiKletkin/yatube-main/internal/config"
	"github.com/VasiliiKletkin/yatube-main/internal/handlers"
	"github.com/VasiliiKletkin/yatube-main/internal/middleware"
	"github.com/VasiliiKletkin/yatube-main/internal/services"
	"github.com/VasiliiKletkin/yatube-main/internal/storage"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/view"
	"github.com/VasiliiKletkin/yatube-main/web"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "yatube_session"

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config  config.Config
	Store   *store.Store
	Captcha services.Captcha

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type route struct {
	method  string
	path    string
	action  access.Action
	handler gin.HandlerFunc
}

// New builds the engine with middleware, templates and every route.
func New(deps Deps) (*gin.Engine, error) {
	if deps.Templates == nil {
		deps.Templates = web.Templates()
	}
	if deps.Static == nil {
		deps.Static = web.Static()
	}
	if deps.Captcha == nil {
		deps.Captcha = services.NewMathCaptcha()
	}

	r := gin.New()
	// ClientIP keys the auth rate limit, so forwarded headers count only from known proxies.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	renderer, err := view.New(deps.Templates, deps.Store.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.HTMLRender = renderer

	sessionStore := cookie.NewStore([]byte(deps.Config.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	r.Use(
		middleware.Recovery(handlers.Recovered),
		middleware.GinZapLogger(),
		middleware.Metrics(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/media/"})),
		sessions.Sessions(sessionName, sessionStore),
		middleware.LoadUser(deps.Store),
	)

	r.StaticFS("/static", http.FS(deps.Static))
	if local, ok := deps.Store.Media().(*storage.LocalStorage); ok {
		if prefix := mediaPrefix(deps.Config.MediaURL); prefix != "" {
			r.StaticFS(prefix, http.Dir(local.Root()))
		}
	}
	r.GET("/healthz", handlers.Health(deps.Store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(r, deps)

	r.NoRoute(handlers.NotFound)
	return r, nil
}

// RegisterRoutes wires the blog and account pages. Routes whose action needs
// an identity are wrapped in AuthRequired.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	posts := handlers.NewPostHandler(deps.Store, deps.Config.PostsPerPage)
	auth := handlers.NewAuthHandler(deps.Store, deps.Captcha)
	feeds := handlers.NewFeedHandler(deps.Store, deps.Config.SiteURL)
	seo := handlers.NewSEOHandler(deps.Store, deps.Config.SiteURL)

	r.GET("/robots.txt", seo.RobotsTxt)
	r.GET("/sitemap.xml", seo.SitemapXML)
	r.GET("/rss.xml", feeds.Latest)
	r.GET("/group/:slug/rss.xml", feeds.Group)

	limiter := middleware.NewRateLimiter(deps.Config.RateLimitPerMinute)
	accounts := r.Group("/auth", limiter.OnlyPOST())
	{
		accounts.GET("/signup/", auth.ShowSignup)
		accounts.POST("/signup/", auth.Signup)
		accounts.GET("/login/", auth.ShowLogin)
		accounts.POST("/login/", auth.Login)
		accounts.GET("/logout/", auth.Logout)
	}

	routes := []route{
		{http.MethodGet, "/", access.ActionIndex, posts.Index},
		{http.MethodGet, "/group/:slug/", access.ActionGroupPosts, posts.GroupPosts},
		{http.MethodGet, "/new/", access.ActionCreatePost, posts.ShowNewPost},
		{http.MethodPost, "/new/", access.ActionCreatePost, posts.NewPost},
		{http.MethodGet, "/:username/", access.ActionProfile, posts.Profile},
		{http.MethodGet, "/:username/:post_id/", access.ActionViewPost, posts.PostView},
		{http.MethodGet, "/:username/:post_id/edit/", access.ActionEditPost, posts.ShowEdit},
		{http.MethodPost, "/:username/:post_id/edit/", access.ActionEditPost, posts.Edit},
		{http.MethodPost, "/:username/:post_id/comment/", access.ActionAddComment, posts.AddComment},
	}
	for _, rt := range routes {
		chain := []gin.HandlerFunc{rt.handler}
		if access.RequiresAuthentication(rt.action) {
			chain = append([]gin.HandlerFunc{middleware.AuthRequired()}, chain...)
		}
		r.Handle(rt.method, rt.path, chain...)
	}
}

func mediaPrefix(mediaURL string) string {
	if !strings.HasPrefix(mediaURL, "/") {
		return ""
	}
	return strings.TrimSuffix(mediaURL, "/")
}
