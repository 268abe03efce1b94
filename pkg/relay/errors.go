package relay

import (
	"errors"
	"fmt"
)

// ErrRelayRejected is matched by errors returned for jobs the endpoint didn't accept
var ErrRelayRejected = errors.New("relay rejected")

// RejectedError reports a job which was not accepted, either by status or by transport failure
type RejectedError struct {
	Link       string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("relay %s rejected: %v", e.Link, e.Err)
}

// Unwrap returns the underlying cause
func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRelayRejected) true
func (e *RejectedError) Is(target error) bool {
	return target == ErrRelayRejected
}
