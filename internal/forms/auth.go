package forms

import (
	"errors"
	"regexp"

	"github.com/VasiliiKletkin/yatube-main/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// SignupSchema is the account creation form. Password confirmation and the
// captcha answer are compared by the handler, which knows the expected values.
func SignupSchema() Schema {
	return Schema{
		{Name: "first_name", Label: "First name", Kind: KindText, Rules: "max=150"},
		{Name: "last_name", Label: "Last name", Kind: KindText, Rules: "max=150"},
		{
			Name:     "username",
			Label:    "Username",
			Kind:     KindText,
			Required: true,
			Rules:    "max=150",
			Check: func(raw string) error {
				if !usernamePattern.MatchString(raw) {
					return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
				}
				if models.IsReservedUsername(raw) {
					return errors.New("This username is reserved.")
				}
				return nil
			},
		},
		{Name: "password", Label: "Password", Kind: KindText, Required: true, Rules: "min=8"},
		{Name: "password2", Label: "Repeat password", Kind: KindText, Required: true},
		{Name: "captcha", Label: "Captcha", Kind: KindText, Required: true, Rules: "number"},
	}
}
