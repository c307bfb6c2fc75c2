package apierrors

import (
	"errors"
	"fmt"
	"time"
)

// Errors shared between the selectors, the fetchers and the aggregator.
var (
	// ErrInvalidArgument is returned before any request is made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable is a transient server side failure, the request can be retried.
	ErrUnavailable = errors.New("upstream temporarily unavailable")
)

// RateLimitedError is returned when the API answered with 429.
// RetryAfter is nil when the server didn't say how long to wait.
type RateLimitedError struct {
	RetryAfter *time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter == nil {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited, retry after %s", *e.RetryAfter)
}

// UpstreamError is any other non-success response. It's fatal.
type UpstreamError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API returned status code %d for %s", e.StatusCode, e.URL)
}

// InvalidArgument wraps ErrInvalidArgument with a message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsRecoverable reports if the error only asks for a wait and a retry.
func IsRecoverable(err error) bool {
	var rateLimited *RateLimitedError
	return errors.As(err, &rateLimited) || errors.Is(err, ErrUnavailable)
}
