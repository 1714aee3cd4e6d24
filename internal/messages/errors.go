package messages

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no wish has the requested id.
var ErrNotFound = errors.New("wish not found")

// RemoteReadError reports a failed read against the document store.
type RemoteReadError struct {
	Op  string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Op, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

// RemoteWriteError reports a failed write against the document store.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
