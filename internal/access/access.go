// Package access decides which identities may perform which actions.
package access

import "github.com/VasiliiKletkin/yatube-main/internal/models"

// Action names a request handler for authorization purposes.
type Action string

const (
	ActionIndex      Action = "index"
	ActionGroupPosts Action = "group_posts"
	ActionProfile    Action = "profile"
	ActionViewPost   Action = "post"
	ActionCreatePost Action = "new_post"
	ActionEditPost   Action = "post_edit"
	ActionAddComment Action = "add_comment"
)

var protected = map[Action]bool{
	ActionCreatePost: true,
	ActionEditPost:   true,
	ActionAddComment: true,
}

// RequiresAuthentication reports whether action needs a logged-in identity.
// Read-only actions never do.
func RequiresAuthentication(action Action) bool {
	return protected[action]
}

// CanEdit is true only for the post's author.
func CanEdit(identity *models.User, post *models.Post) bool {
	if identity == nil || post == nil {
		return false
	}
	return identity.ID != 0 && identity.ID == post.AuthorID
}
