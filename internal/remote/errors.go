package remote

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

// ReadError is reported when the data service fails a read. Message carries
// the backend's text verbatim.
type ReadError struct {
	Table   string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Table == "" {
		return "remote read: " + e.Message
	}
	return fmt.Sprintf("remote read %s: %s", e.Table, e.Message)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError is the mutation counterpart of ReadError. Err is set when the
// request never reached the service.
type WriteError struct {
	Table   string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Table == "" {
		return "remote write: " + e.Message
	}
	return fmt.Sprintf("remote write %s: %s", e.Table, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func IsReadError(err error) bool {
	var target *ReadError
	return errors.As(err, &target)
}

func IsWriteError(err error) bool {
	var target *WriteError
	return errors.As(err, &target)
}
