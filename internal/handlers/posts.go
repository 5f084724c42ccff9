package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/VasiliiKletkin/yatube-main/internal/access"
	"github.com/VasiliiKletkin/yatube-main/internal/forms"
	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/paginator"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostHandler struct {
	store   *store.Store
	perPage int
}

func NewPostHandler(s *store.Store, perPage int) *PostHandler {
	return &PostHandler{store: s, perPage: perPage}
}

func postURL(username string, id uint) string {
	return fmt.Sprintf("/%s/%d/", username, id)
}

func (h *PostHandler) paginate(c *gin.Context, query *gorm.DB) (paginator.Page[models.Post], error) {
	return paginator.FromQuery[models.Post](c.Request.Context(), query, h.perPage, c.Query("page"), store.PostPreloads...)
}

// Index lists every post, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.paginate(c, h.store.PostsQuery(c.Request.Context()))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Page": page,
		"Year": time.Now().Year(),
	})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.store.GroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.paginate(c, h.store.GroupPostsQuery(ctx, group.ID))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/group.html", gin.H{
		"Group": group,
		"Page":  page,
	})
}

func (h *PostHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, err := h.store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.paginate(c, h.store.AuthorPostsQuery(ctx, author.ID))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":     author,
		"Page":       page,
		"PostsCount": page.Total,
	})
}

// loadPost resolves the /:username/:post_id/ pair, rendering 404 on a miss.
func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.StringToUint(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := h.store.PostByAuthor(c.Request.Context(), c.Param("username"), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return post, true
}

func (h *PostHandler) PostView(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	count, err := h.store.CountAuthorPosts(ctx, post.AuthorID)
	if err != nil {
		ServerError(c, err)
		return
	}
	comments, err := h.store.CommentsForPost(ctx, post.ID)
	if err != nil {
		ServerError(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/post.html", gin.H{
		"Post":       post,
		"Author":     &post.Author,
		"PostsCount": count,
		"Form":       forms.CommentSchema().Unbound(nil),
		"Comments":   comments,
		"CanEdit":    access.CanEdit(currentUser(c), post),
	})
}

func (h *PostHandler) postSchema(ctx context.Context) forms.Schema {
	return forms.PostSchema(func(id uint) bool {
		return h.store.GroupExists(ctx, id)
	})
}

func (h *PostHandler) renderPostForm(c *gin.Context, code int, name string, form *forms.Form, post *models.Post) {
	groups, err := h.store.ListGroups(c.Request.Context())
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, code, name, gin.H{
		"Form":   form,
		"Groups": groups,
		"Post":   post,
		"IsEdit": post != nil,
	})
}

// bindPost validates the submitted post form. On failure the form is
// re-rendered with 400 and false is returned.
func (h *PostHandler) bindPost(c *gin.Context, name string, post *models.Post) (*forms.Form, bool) {
	form := h.postSchema(c.Request.Context()).Bind(
		postedValues(c, "text", "group"),
		postedFiles(c, "image"),
	)
	if !form.IsValid() {
		h.renderPostForm(c, http.StatusBadRequest, name, form, post)
		return form, false
	}
	return form, true
}

// save reports store validation failures on the form. It returns false when
// a response has already been written.
func (h *PostHandler) save(c *gin.Context, name string, form *forms.Form, post *models.Post, write func() error) bool {
	err := write()
	if err == nil {
		return true
	}
	if verr, ok := store.IsValidation(err); ok {
		form.Errors.Merge(verr.Fields)
		h.renderPostForm(c, http.StatusBadRequest, name, form, post)
		return false
	}
	fail(c, err)
	return false
}

func postInput(form *forms.Form) store.PostInput {
	return store.PostInput{
		Text:    form.Value("text"),
		GroupID: forms.GroupID(form),
		Image:   form.Uploads["image"],
	}
}

func (h *PostHandler) ShowNewPost(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, "posts/new_post.html", h.postSchema(c.Request.Context()).Unbound(nil), nil)
}

// NewPost publishes a post authored by the current user.
func (h *PostHandler) NewPost(c *gin.Context) {
	const page = "posts/new_post.html"
	user := currentUser(c)

	form, ok := h.bindPost(c, page, nil)
	if !ok {
		return
	}

	var created *models.Post
	saved := h.save(c, page, form, nil, func() error {
		var err error
		created, err = h.store.CreatePost(c.Request.Context(), user.ID, postInput(form))
		return err
	})
	if !saved {
		return
	}

	utils.Logger.Info("post created", zap.Uint("post_id", created.ID), zap.Uint("author_id", user.ID))
	c.Redirect(http.StatusFound, "/")
}

// ShowEdit and Edit only act for the post's author. Anyone else is sent
// back to the post, which stays unchanged.
func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if !access.CanEdit(currentUser(c), post) {
		c.Redirect(http.StatusFound, postURL(post.Author.Username, post.ID))
		return
	}

	initial := map[string]string{"text": post.Text}
	if post.GroupID != nil {
		initial["group"] = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	form := h.postSchema(c.Request.Context()).Unbound(initial)
	h.renderPostForm(c, http.StatusOK, "posts/post_edit.html", form, post)
}

func (h *PostHandler) Edit(c *gin.Context) {
	const page = "posts/post_edit.html"

	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	target := postURL(post.Author.Username, post.ID)
	if !access.CanEdit(currentUser(c), post) {
		c.Redirect(http.StatusFound, target)
		return
	}

	form, ok := h.bindPost(c, page, post)
	if !ok {
		return
	}
	saved := h.save(c, page, form, post, func() error {
		_, err := h.store.UpdatePost(c.Request.Context(), post.ID, postInput(form))
		return err
	})
	if !saved {
		return
	}
	c.Redirect(http.StatusFound, target)
}

// AddComment always ends on the post page. An invalid comment is dropped.
func (h *PostHandler) AddComment(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	target := postURL(post.Author.Username, post.ID)

	form := forms.CommentSchema().Bind(postedValues(c, "text"), nil)
	if form.IsValid() {
		_, err := h.store.CreateComment(c.Request.Context(), post.ID, currentUser(c).ID, form.Value("text"))
		if err != nil {
			if _, invalid := store.IsValidation(err); !invalid {
				ServerError(c, err)
				return
			}
			utils.Logger.Debug("comment rejected", zap.Uint("post_id", post.ID), zap.Error(err))
		}
	}
	c.Redirect(http.StatusFound, target)
}
