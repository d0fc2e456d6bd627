package domain

import "errors"

var (
	// ErrNotFound is returned when a map object does not exist.
	ErrNotFound = errors.New("map object not found")
	// ErrUserNotFound is returned when the directory has no user for an id.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleDenied is returned when a user lacks the role an operation needs.
	ErrRoleDenied = errors.New("your current roles do not permit you to push to the db")
)

// ValidationError carries per-field messages for a rejected write.
type ValidationError struct {
	Message string
	Errors  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}
