package validate

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates any DTO carrying validator tags.
func Struct(s interface{}) error { return v.Struct(s) }

// createFragmentInput mirrors the multipart capture fields.
type createFragmentInput struct {
	Type    string `validate:"required"`
	Content string `validate:"required"`
}

// CreateFragment validates input for creating a fragment. Type coercion to
// the canonical enum happens later in the service.
func CreateFragment(fragmentType, content string) error {
	if err := v.Struct(createFragmentInput{Type: fragmentType, Content: content}); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("type and content are required")
		}
		return err
	}
	return nil
}

// Date checks a YYYY-MM-DD date string.
func Date(s string) error {
	if s == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}
