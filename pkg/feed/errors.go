package feed

import (
	"errors"
	"fmt"
)

// ErrFeedUnreachable is matched by errors returned when no parse strategy worked
var ErrFeedUnreachable = errors.New("feed unreachable")

var errNoStrategies = errors.New("no parse strategies configured")

// UnreachableError reports a feed which could not be parsed by any strategy
type UnreachableError struct {
	URL string
	Err error // the most informative strategy failure
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("feed %s unreachable: %v", e.URL, e.Err)
}

// Unwrap returns the underlying strategy failure
func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFeedUnreachable) true
func (e *UnreachableError) Is(target error) bool {
	return target == ErrFeedUnreachable
}
