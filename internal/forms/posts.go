package forms

import (
	"errors"
	"strconv"
)

var errUnknownGroup = errors.New("Select a valid choice. That choice is not one of the available choices.")

// GroupExists reports whether a group id may be chosen.
type GroupExists func(id uint) bool

// PostSchema is the schema for creating and editing posts.
func PostSchema(groupExists GroupExists) Schema {
	return Schema{
		{
			Name:     "text",
			Label:    "Text",
			Kind:     KindText,
			Required: true,
			HelpText: "Write your post here.",
		},
		{
			Name:  "group",
			Label: "Group",
			Kind:  KindChoice,
			Rules: "number",
			Check: func(raw string) error {
				id, err := strconv.ParseUint(raw, 10, 64)
				if err != nil || id == 0 || groupExists == nil || !groupExists(uint(id)) {
					return errUnknownGroup
				}
				return nil
			},
			HelpText: "Optionally file the post under a group.",
		},
		{
			Name:     "image",
			Label:    "Image",
			Kind:     KindImage,
			HelpText: "Optional picture.",
		},
	}
}

// CommentSchema is the schema for comments.
func CommentSchema() Schema {
	return Schema{
		{
			Name:     "text",
			Label:    "Comment",
			Kind:     KindText,
			Required: true,
		},
	}
}

// GroupID returns the chosen group of a valid post form, or nil.
func GroupID(f *Form) *uint {
	raw := f.Value("group")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}
