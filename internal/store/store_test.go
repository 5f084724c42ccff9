package store

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/VasiliiKletkin/yatube-main/internal/forms"
	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/VasiliiKletkin/yatube-main/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) (*Store, *gorm.DB, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}, &models.Post{}, &models.Comment{}))

	root := t.TempDir()
	media, err := storage.NewLocalStorage(root, "/media/")
	require.NoError(t, err)

	return New(db, media), db, root
}

func mustUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), UserInput{Username: name, Password: "secret-pass"})
	require.NoError(t, err)
	return u
}

func mustGroup(t *testing.T, s *Store, slug string) *models.Group {
	t.Helper()
	g, err := s.CreateGroup(context.Background(), GroupInput{Title: "Group " + slug, Slug: slug})
	require.NoError(t, err)
	return g
}

func pngUpload(t *testing.T) *forms.Upload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	up, err := forms.DecodeUpload("dot.png", buf.Bytes())
	require.NoError(t, err)
	return up
}

func TestCreateGroupRejectsDuplicateSlug(t *testing.T) {
	s, db, _ := setupTestStore(t)
	ctx := context.Background()

	mustGroup(t, s, "cats")

	_, err := s.CreateGroup(ctx, GroupInput{Title: "Other cats", Slug: "cats"})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "slug")

	var n int64
	require.NoError(t, db.Model(&models.Group{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreateGroupRequiresTitleAndSlug(t *testing.T) {
	s, _, _ := setupTestStore(t)

	_, err := s.CreateGroup(context.Background(), GroupInput{})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "slug")
}

func TestGroupLookup(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	g := mustGroup(t, s, "dogs")

	got, err := s.GroupBySlug(ctx, "dogs")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = s.GroupBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := s.GroupByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "dogs", byID.Slug)
	_, err = s.GroupByID(ctx, g.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, s.GroupExists(ctx, g.ID))
	assert.False(t, s.GroupExists(ctx, g.ID+1))

	mustGroup(t, s, "ants")
	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "ants", groups[0].Slug)
}

func TestCreatePostStampsAuthorAndDate(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	g := mustGroup(t, s, "books")

	post, err := s.CreatePost(ctx, u.ID, PostInput{Text: "first", GroupID: &g.ID})
	require.NoError(t, err)
	assert.Equal(t, u.ID, post.AuthorID)
	assert.False(t, post.PubDate.IsZero())

	got, err := s.PostByAuthor(ctx, "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "books", got.Group.Slug)
}

func TestCreatePostValidation(t *testing.T) {
	s, db, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	missing := uint(99)

	_, err := s.CreatePost(ctx, u.ID, PostInput{Text: "  ", GroupID: &missing})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "text")
	assert.Contains(t, verr.Fields, "group")

	_, err = s.CreatePost(ctx, 1234, PostInput{Text: "orphan"})
	verr, ok = IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "author")

	var n int64
	require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPostByAuthorRequiresMatchingAuthor(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	leo := mustUser(t, s, "leo")
	mustUser(t, s, "ann")

	post, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "mine"})
	require.NoError(t, err)

	_, err = s.PostByAuthor(ctx, "ann", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.PostByAuthor(ctx, "ghost", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.PostByAuthor(ctx, "leo", post.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePostKeepsPubDateAndAuthor(t *testing.T) {
	s, db, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	g := mustGroup(t, s, "books")

	post, err := s.CreatePost(ctx, u.ID, PostInput{Text: "before", GroupID: &g.ID})
	require.NoError(t, err)
	var before models.Post
	require.NoError(t, db.First(&before, post.ID).Error)

	updated, err := s.UpdatePost(ctx, post.ID, PostInput{Text: "after"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	assert.Nil(t, updated.GroupID)
	assert.Equal(t, u.ID, updated.AuthorID)
	assert.True(t, before.PubDate.Equal(updated.PubDate))

	_, err = s.UpdatePost(ctx, post.ID+1, PostInput{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdatePost(ctx, post.ID, PostInput{Text: ""})
	_, ok := IsValidation(err)
	assert.True(t, ok)
}

func TestPostImageIsStoredUnderPostsPrefix(t *testing.T) {
	s, _, root := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")

	post, err := s.CreatePost(ctx, u.ID, PostInput{Text: "pic", Image: pngUpload(t)})
	require.NoError(t, err)
	require.NotEmpty(t, post.Image)
	assert.Regexp(t, `^posts/\d+/[0-9a-f-]{36}\.png$`, post.Image)
	assert.FileExists(t, filepath.Join(root, post.Image))
	assert.Equal(t, "/media/"+post.Image, s.ImageURL(post.Image))

	first := post.Image
	updated, err := s.UpdatePost(ctx, post.ID, PostInput{Text: "new pic", Image: pngUpload(t)})
	require.NoError(t, err)
	assert.NotEqual(t, first, updated.Image)
	_, statErr := os.Stat(filepath.Join(root, first))
	assert.True(t, os.IsNotExist(statErr))

	kept, err := s.UpdatePost(ctx, post.ID, PostInput{Text: "text only"})
	require.NoError(t, err)
	assert.Equal(t, updated.Image, kept.Image)
}

func TestListingsAreNewestFirst(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	leo := mustUser(t, s, "leo")
	ann := mustUser(t, s, "ann")
	g := mustGroup(t, s, "books")

	p1, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "one", GroupID: &g.ID})
	require.NoError(t, err)
	p2, err := s.CreatePost(ctx, ann.ID, PostInput{Text: "two"})
	require.NoError(t, err)
	p3, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "three", GroupID: &g.ID})
	require.NoError(t, err)

	ids := func(q *gorm.DB) []uint {
		var posts []models.Post
		require.NoError(t, q.Find(&posts).Error)
		out := make([]uint, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, ids(s.PostsQuery(ctx)))
	assert.Equal(t, []uint{p3.ID, p1.ID}, ids(s.GroupPostsQuery(ctx, g.ID)))
	assert.Equal(t, []uint{p3.ID, p1.ID}, ids(s.AuthorPostsQuery(ctx, leo.ID)))

	n, err := s.CountAuthorPosts(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestComments(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	leo := mustUser(t, s, "leo")
	ann := mustUser(t, s, "ann")
	post, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "talk"})
	require.NoError(t, err)

	c1, err := s.CreateComment(ctx, post.ID, ann.ID, "first")
	require.NoError(t, err)
	c2, err := s.CreateComment(ctx, post.ID, leo.ID, "second")
	require.NoError(t, err)
	assert.False(t, c1.Created.IsZero())

	comments, err := s.CommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c2.ID, comments[0].ID)
	assert.Equal(t, "ann", comments[1].Author.Username)

	_, err = s.CreateComment(ctx, post.ID, ann.ID, "")
	_, ok := IsValidation(err)
	assert.True(t, ok)

	_, err = s.CreateComment(ctx, post.ID+10, ann.ID, "lost")
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "post")
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	s, db, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	g := mustGroup(t, s, "books")

	post, err := s.CreatePost(ctx, u.ID, PostInput{Text: "filed", GroupID: &g.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteGroup(ctx, g.ID))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Nil(t, got.GroupID)
	assert.ErrorIs(t, s.DeleteGroup(ctx, g.ID), ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	s, db, root := setupTestStore(t)
	ctx := context.Background()
	leo := mustUser(t, s, "leo")
	ann := mustUser(t, s, "ann")

	leoPost, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "leo's", Image: pngUpload(t)})
	require.NoError(t, err)
	annPost, err := s.CreatePost(ctx, ann.ID, PostInput{Text: "ann's"})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, leoPost.ID, ann.ID, "on leo's post")
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, annPost.ID, leo.ID, "leo on ann's post")
	require.NoError(t, err)
	kept, err := s.CreateComment(ctx, annPost.ID, ann.ID, "ann on ann's post")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, leo.ID))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, annPost.ID, posts[0].ID)

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, kept.ID, comments[0].ID)

	_, statErr := os.Stat(filepath.Join(root, leoPost.Image))
	assert.True(t, os.IsNotExist(statErr))

	_, err = s.UserByID(ctx, leo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostRemovesComments(t *testing.T) {
	s, db, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	post, err := s.CreatePost(ctx, u.ID, PostInput{Text: "short-lived"})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, post.ID, u.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, post.ID))

	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUsers(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "leo")
	assert.NotEqual(t, "secret-pass", u.Password)

	_, err := s.CreateUser(ctx, UserInput{Username: "leo", Password: "other-pass"})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "username")

	_, err = s.CreateUser(ctx, UserInput{Username: "new", Password: "whatever1"})
	verr, ok = IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This username is reserved."}, verr.Fields["username"])

	_, err = s.CreateUser(ctx, UserInput{Username: "bad name", Password: "whatever1"})
	_, ok = IsValidation(err)
	assert.True(t, ok)

	got, err := s.Authenticate(ctx, "leo", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "leo", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "ghost", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.UserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPing(t *testing.T) {
	s, _, _ := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestLatestPostsAndAuthors(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()
	leo := mustUser(t, s, "leo")
	mustUser(t, s, "quiet")
	g := mustGroup(t, s, "books")

	for i := 0; i < 3; i++ {
		_, err := s.CreatePost(ctx, leo.ID, PostInput{Text: "p", GroupID: &g.ID})
		require.NoError(t, err)
	}

	posts, err := s.LatestPosts(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "leo", posts[0].Author.Username)
	require.NotNil(t, posts[0].Group)
	assert.True(t, posts[0].ID > posts[1].ID)

	posts, err = s.LatestPosts(ctx, s.GroupPostsQuery(ctx, g.ID+1), 10)
	require.NoError(t, err)
	assert.Empty(t, posts)

	authors, err := s.ListAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "leo", authors[0].Username)
}
