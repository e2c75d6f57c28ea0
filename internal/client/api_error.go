package client

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// APIError is any non-2xx response from the server. Code and Message come
// from the {error, message} envelope when the body carries one. Callers
// branch with errors.As; transport failures are never APIErrors.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (%d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func apiError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: status, Code: payload.Error, Message: payload.Message}
	}
	return &APIError{Status: status, Code: "unexpected_response", Message: excerpt(body)}
}

// excerpt keeps unexpected bodies readable in error output.
func excerpt(body []byte) string {
	const max = 160

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response body"
	}
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
