package access

import (
	"testing"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRequiresAuthentication(t *testing.T) {
	tests := []struct {
		action Action
		want   bool
	}{
		{ActionIndex, false},
		{ActionGroupPosts, false},
		{ActionProfile, false},
		{ActionViewPost, false},
		{ActionCreatePost, true},
		{ActionEditPost, true},
		{ActionAddComment, true},
		{Action("unknown"), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.action), func(t *testing.T) {
			assert.Equal(t, tc.want, RequiresAuthentication(tc.action))
		})
	}
}

func TestCanEdit(t *testing.T) {
	author := &models.User{ID: 1, Username: "leo"}
	other := &models.User{ID: 2, Username: "anna"}
	post := &models.Post{ID: 10, AuthorID: author.ID}

	assert.True(t, CanEdit(author, post))
	assert.False(t, CanEdit(other, post))
	assert.False(t, CanEdit(nil, post))
	assert.False(t, CanEdit(author, nil))
	assert.False(t, CanEdit(&models.User{}, &models.Post{}))
}
