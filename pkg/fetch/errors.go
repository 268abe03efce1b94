package fetch

import (
	"errors"
	"fmt"
)

// ErrFetchExhausted is matched by errors returned when every fetch attempt failed
var ErrFetchExhausted = errors.New("fetch attempts exhausted")

// ExhaustedError reports a fetch which failed on every attempt, including the insecure fallback
type ExhaustedError struct {
	URL      string
	Attempts int   // transport calls made
	Err      error // last underlying cause
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last underlying cause
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetchExhausted) true
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrFetchExhausted
}
