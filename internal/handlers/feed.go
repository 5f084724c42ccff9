package handlers

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-gonic/gin"
)

// feedSize is how many posts a feed carries.
const feedSize = 20

type FeedHandler struct {
	store   *store.Store
	siteURL string
}

func NewFeedHandler(s *store.Store, siteURL string) *FeedHandler {
	return &FeedHandler{store: s, siteURL: siteURL}
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Author      string `xml:"author,omitempty"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// Latest is the RSS feed of the newest posts site-wide.
func (h *FeedHandler) Latest(c *gin.Context) {
	posts, err := h.store.LatestPosts(c.Request.Context(), nil, feedSize)
	if err != nil {
		ServerError(c, err)
		return
	}
	h.write(c, "Yatube", h.siteURL+"/", "Latest posts", posts)
}

// Group is the RSS feed of one group. Unknown slugs are 404.
func (h *FeedHandler) Group(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.store.GroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	posts, err := h.store.LatestPosts(ctx, h.store.GroupPostsQuery(ctx, group.ID), feedSize)
	if err != nil {
		ServerError(c, err)
		return
	}
	description := "Posts in " + group.Title
	if group.Description != nil && *group.Description != "" {
		description = *group.Description
	}
	h.write(c, group.Title+" | Yatube", fmt.Sprintf("%s/group/%s/", h.siteURL, group.Slug), description, posts)
}

func (h *FeedHandler) write(c *gin.Context, title, link, description string, posts []models.Post) {
	channel := rssChannel{
		Title:         title,
		Link:          link,
		Description:   description,
		LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		Items:         make([]rssItem, 0, len(posts)),
	}
	for _, p := range posts {
		url := h.siteURL + postURL(p.Author.Username, p.ID)
		item := rssItem{
			Title:       p.String(),
			Link:        url,
			GUID:        url,
			Author:      p.Author.Username,
			PubDate:     p.PubDate.UTC().Format(time.RFC1123Z),
			Description: string(utils.RenderMarkdown(p.Text)),
		}
		if p.Group != nil {
			item.Category = p.Group.Title
		}
		channel.Items = append(channel.Items, item)
	}
	writeXML(c, "application/rss+xml; charset=utf-8", rssDocument{Version: "2.0", Channel: channel})
}
