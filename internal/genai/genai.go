// Package genai wraps the external generative-language provider behind a
// small TextGenerator interface so callers can swap models per request and
// tests can script responses.
package genai

import (
	"context"
	"errors"
)

// ErrOverloaded marks the provider's transient service-unavailable signal.
// Callers may retry the same model when they see it; every other provider
// error means "give up on this model".
var ErrOverloaded = errors.New("model overloaded")

// TextGenerator produces text from a prompt using a named model.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
