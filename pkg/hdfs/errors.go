package hdfs

import (
	"errors"
	"fmt"
)

// ErrTooLarge marks a bounded read that exceeded its byte limit.
var ErrTooLarge = errors.New("file too large")

// OpError records an error and the operation and remote path that
// caused it. Every failing FileSource operation returns one.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsTooLarge reports whether an error indicates a byte-limit
// violation.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
