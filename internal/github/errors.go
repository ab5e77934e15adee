package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRepository is returned for a repository name not in "owner/name" form.
var ErrInvalidRepository = errors.New("github: repository must be owner/name")

// RateLimitError reports that the API quota is exhausted until ResetAt.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError is a non-success GitHub API response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err was caused by rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
