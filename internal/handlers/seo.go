package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/gin-gonic/gin"
)

// sitemapLimit is the per-file URL cap of the sitemap protocol.
const sitemapLimit = 50000

type SEOHandler struct {
	store   *store.Store
	siteURL string
}

func NewSEOHandler(s *store.Store, siteURL string) *SEOHandler {
	return &SEOHandler{store: s, siteURL: siteURL}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /new/
Disallow: /*/edit/
Disallow: /*/comment/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the front page, every group, every author and the newest posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	today := time.Now().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + "/", LastMod: today, ChangeFreq: "hourly", Priority: "1.0"})

	groups, err := h.store.ListGroups(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}
	for _, g := range groups {
		set.URLs = append(set.URLs, sitemapURL{Loc: fmt.Sprintf("%s/group/%s/", h.siteURL, g.Slug), ChangeFreq: "daily", Priority: "0.8"})
	}

	authors, err := h.store.ListAuthors(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}
	for _, a := range authors {
		set.URLs = append(set.URLs, sitemapURL{Loc: fmt.Sprintf("%s/%s/", h.siteURL, a.Username), ChangeFreq: "daily", Priority: "0.6"})
	}

	remaining := sitemapLimit - len(set.URLs)
	if remaining > 0 {
		posts, err := h.store.LatestPosts(ctx, nil, remaining)
		if err != nil {
			ServerError(c, err)
			return
		}
		for _, p := range posts {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.siteURL + postURL(p.Author.Username, p.ID),
				LastMod:    p.PubDate.Format("2006-01-02"),
				ChangeFreq: "weekly",
				Priority:   "0.5",
			})
		}
	}

	writeXML(c, "application/xml; charset=utf-8", set)
}

func writeXML(c *gin.Context, contentType string, v any) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
