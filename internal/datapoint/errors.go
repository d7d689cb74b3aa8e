package datapoint

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed covers transport errors, timeouts and cancellation.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrNonSuccessStatus means the server answered with a non-2xx status.
	ErrNonSuccessStatus = errors.New("non-success status")
	// ErrDecodeFailed means the body was not a valid JSON document.
	ErrDecodeFailed = errors.New("decode failed")
)

// FetchError is returned by Client.Fetch. Kind is one of the sentinels above,
// so callers can use errors.Is(err, ErrNonSuccessStatus) and friends.
type FetchError struct {
	Endpoint   string
	Kind       error
	StatusCode int // set only for ErrNonSuccessStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == ErrNonSuccessStatus:
		return fmt.Sprintf("fetch %s: %v: %d", e.Endpoint, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v: %v", e.Endpoint, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Kind)
	}
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNonSuccessStatus):
		return "non_success_status"
	case errors.Is(err, ErrDecodeFailed):
		return "decode_failed"
	default:
		return "connection_failed"
	}
}
