// Package forms validates submitted post and comment data against an
// explicit field schema instead of ad-hoc checks in each handler.
package forms

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindText   Kind = "text"
	KindChoice Kind = "choice"
	KindImage  Kind = "image"
)

// Field describes one form input. Rules is a validator tag applied to the
// trimmed raw value; Check runs afterwards for rules a tag cannot express.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Rules    string
	Check    func(raw string) error
	HelpText string
}

type Schema []Field

// Errors maps a field name to its messages. The empty key holds form-wide errors.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge copies messages from other, e.g. store-level validation failures.
func (e Errors) Merge(other map[string][]string) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

const requiredMsg = "This field is required."

var validate = validator.New()

// Form is a bound, validated submission.
type Form struct {
	Schema  Schema
	Data    map[string]string
	Errors  Errors
	Uploads map[string]*Upload

	files     map[string]*multipart.FileHeader
	validated bool
}

// Bind attaches submitted values to the schema. files may be nil.
func (s Schema) Bind(data map[string]string, files map[string]*multipart.FileHeader) *Form {
	clean := make(map[string]string, len(data))
	for _, field := range s {
		if v, ok := data[field.Name]; ok {
			clean[field.Name] = strings.TrimSpace(v)
		}
	}
	if files == nil {
		files = map[string]*multipart.FileHeader{}
	}
	return &Form{
		Schema:  s,
		Data:    clean,
		Errors:  Errors{},
		Uploads: map[string]*Upload{},
		files:   files,
	}
}

// Unbound returns an empty form used for the initial GET render.
func (s Schema) Unbound(initial map[string]string) *Form {
	f := s.Bind(initial, nil)
	f.validated = true
	return f
}

// IsValid validates every field once and reports whether no errors were found.
func (f *Form) IsValid() bool {
	if !f.validated {
		f.validated = true
		for _, field := range f.Schema {
			f.validateField(field)
		}
	}
	return len(f.Errors) == 0
}

func (f *Form) validateField(field Field) {
	if field.Kind == KindImage {
		f.validateImage(field)
		return
	}

	raw := f.Data[field.Name]
	if raw == "" {
		if field.Required {
			f.Errors.Add(field.Name, requiredMsg)
		}
		return
	}

	if field.Rules != "" {
		if err := validate.Var(raw, field.Rules); err != nil {
			f.Errors.Add(field.Name, describe(err))
			return
		}
	}

	if field.Check != nil {
		if err := field.Check(raw); err != nil {
			f.Errors.Add(field.Name, err.Error())
		}
	}
}

func (f *Form) validateImage(field Field) {
	fh := f.files[field.Name]
	if fh == nil {
		if field.Required {
			f.Errors.Add(field.Name, requiredMsg)
		}
		return
	}
	upload, err := ReadUpload(fh)
	if err != nil {
		f.Errors.Add(field.Name, err.Error())
		return
	}
	f.Uploads[field.Name] = upload
}

// Value returns the bound value of a field, for re-rendering.
func (f *Form) Value(name string) string {
	return f.Data[name]
}

func (f *Form) FieldErrors(name string) []string {
	return f.Errors[name]
}

func (f *Form) NonFieldErrors() []string {
	return f.Errors[""]
}

func (f *Form) Field(name string) (Field, bool) {
	for _, field := range f.Schema {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Enter a valid value."
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return requiredMsg
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "number", "numeric":
		return "Select a valid choice."
	case "alphanum":
		return "Use letters and digits only."
	default:
		return "Enter a valid value."
	}
}
