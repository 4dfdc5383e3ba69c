// Package form validates user submitted payloads for both the HTTP handlers
// and the message editor.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxContentLength = 2000

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrInvalidInput = errors.New("invalid input")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type EditMessage struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type NewMessage struct {
	Content string  `json:"content" validate:"required,max=2000"`
	FileURL *string `json:"file-url,omitempty" validate:"omitempty,url"`
}

type NewChannel struct {
	Name string `json:"name" validate:"required,max=64,ne=general"`
	Type string `json:"type" validate:"required,oneof=TEXT AUDIO VIDEO"`
}

type NewServer struct {
	Name     string `json:"name" validate:"required,max=64"`
	ImageURL string `json:"image-url" validate:"omitempty,url"`
}

type Profile struct {
	Name     string `json:"name" validate:"required,max=32"`
	ImageURL string `json:"image-url" validate:"omitempty,url"`
}

// ValidateContent checks an edited message body. Whitespace-only bodies are empty.
func ValidateContent(content string) error {
	return Validate(&EditMessage{Content: strings.TrimSpace(content)})
}

// Validate runs the struct tags of v. A missing or blank "Content" field is
// reported as ErrEmptyContent, anything else wraps ErrInvalidInput.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Field() == "Content" && fe.Tag() == "required" {
			return ErrEmptyContent
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, ", "))
}
