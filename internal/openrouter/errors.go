package openrouter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stackslab/ide/internal/domain/workspace"
)

// ErrEmptyCompletion is returned when the provider answers without choices.
var ErrEmptyCompletion = errors.New("No response from AI model")

// ProviderError is a non-2xx answer from the completion endpoint.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	switch e.Status {
	case http.StatusPaymentRequired:
		return "Insufficient credits: " + e.Message
	case http.StatusTooManyRequests:
		return "Rate limit exceeded: " + e.Message
	case http.StatusUnauthorized:
		return "Invalid API key: " + e.Message
	default:
		return fmt.Sprintf("OpenRouter API error: %d - %s", e.Status, e.Message)
	}
}

// Unwrap maps the status onto the workspace error categories.
func (e *ProviderError) Unwrap() error {
	switch e.Status {
	case http.StatusPaymentRequired:
		return workspace.ErrInsufficientCredits
	case http.StatusTooManyRequests:
		return workspace.ErrRateLimited
	case http.StatusUnauthorized:
		return workspace.ErrInvalidCredential
	default:
		return nil
	}
}
