package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMemberClosed indicates an operation that requires an open membership.
	ErrMemberClosed = errors.New("member is closed")
	// ErrMemberOpen indicates an operation that requires a closed membership.
	ErrMemberOpen = errors.New("member is still open")
)
