package libcdp

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrTerminated       = errors.New("program exit")
	ErrStreamClosed     = errors.New("event stream has ended")
)

// ErrDecodeEvent reports that a subscriber-supplied decoder rejected the raw
// payload of an inbound event.
type ErrDecodeEvent struct {
	err    error
	method string
}

func (e ErrDecodeEvent) Error() string {
	return fmt.Sprintf("cannot decode %q event: %s", e.method, e.err)
}

func (e ErrDecodeEvent) Unwrap() error { return e.err }

// Method returns the method key of the event that failed to decode.
func (e ErrDecodeEvent) Method() string { return e.method }

func WrapErrDecodeEvent(err error, method string) error {
	if err == nil {
		return nil
	}
	return ErrDecodeEvent{err: err, method: method}
}
