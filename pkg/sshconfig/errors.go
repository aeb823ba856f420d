package sshconfig

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every lookup miss (errors.Is).
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing host pattern or option key.
type NotFoundError struct {
	Kind string // "host" or "option"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
