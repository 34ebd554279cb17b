package loopia

import (
	"errors"
	"fmt"
)

// The API reports failures as status strings in otherwise successful
// responses. Known statuses map to sentinel errors so callers can branch
// with errors.Is.
var (
	// ErrUnauthorized indicates the API rejected the credentials.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrOccupied indicates the name is already taken.
	ErrOccupied = errors.New("name already occupied")

	// ErrRateLimited indicates too many requests in a short period.
	ErrRateLimited = errors.New("rate limited")

	// ErrBadInput indicates the API rejected a parameter.
	ErrBadInput = errors.New("bad request data")

	// ErrUnknown is the API's catch-all failure status. The API also
	// returns it for operations on names it has no knowledge of.
	ErrUnknown = errors.New("unknown API error")
)

// statusOK is the status string for a successful mutation.
const statusOK = "OK"

// StatusError wraps a non-OK API status with the method that produced it.
type StatusError struct {
	Method string
	Status string
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %q: %v", e.Method, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// statusError maps an API status string to an error, or nil for OK.
func statusError(method, status string) error {
	if status == statusOK {
		return nil
	}

	var err error
	switch status {
	case "AUTH_ERROR":
		err = ErrUnauthorized
	case "DOMAIN_OCCUPIED":
		err = ErrOccupied
	case "RATE_LIMITED":
		err = ErrRateLimited
	case "BAD_INDATA":
		err = ErrBadInput
	default:
		err = ErrUnknown
	}

	return &StatusError{Method: method, Status: status, Err: err}
}

// IsUnauthorized returns true if the error indicates rejected credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsOccupied returns true if the error indicates the name is already taken.
func IsOccupied(err error) bool {
	return errors.Is(err, ErrOccupied)
}

// IsRateLimited returns true if the error indicates request throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
