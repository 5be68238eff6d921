package session

import (
	"errors"
	"fmt"
)

// Kind classifies a failed bridge operation.
type Kind int

const (
	// ConnectionError is a connect-time parse, network or authentication failure.
	ConnectionError Kind = iota + 1
	// NotConnectedError means the operation needs a live connection and there is none.
	NotConnectedError
	// ValidationError is malformed caller input, e.g. a negative timeout.
	ValidationError
	// QueryError is a failure reported while executing SQL.
	QueryError
	// ProtocolError is a connection-level failure while waiting for or draining notifications.
	ProtocolError
	// SerializationError is a failure encoding a result.
	SerializationError
)

var (
	ErrConnection    = errors.New("connection error")
	ErrNotConnected  = errors.New("not connected")
	ErrValidation    = errors.New("validation error")
	ErrQuery         = errors.New("query error")
	ErrProtocol      = errors.New("protocol error")
	ErrSerialization = errors.New("serialization error")
)

func (k Kind) sentinel() error {
	switch k {
	case ConnectionError:
		return ErrConnection
	case NotConnectedError:
		return ErrNotConnected
	case ValidationError:
		return ErrValidation
	case QueryError:
		return ErrQuery
	case ProtocolError:
		return ErrProtocol
	case SerializationError:
		return ErrSerialization
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every failing Session operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrQuery) and friends match on the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// ErrorSink remembers the outcome of the most recent operation so a caller
// without an error channel can poll for it.
type ErrorSink struct {
	last error
}

// Report records an operation's outcome. A nil error clears the sink.
func (s *ErrorSink) Report(err error) {
	s.last = err
}

// Err returns the most recently reported error, or nil.
func (s *ErrorSink) Err() error {
	return s.last
}

// LastError returns the text of the most recently reported error, or "" if
// the last operation succeeded or nothing has run yet.
func (s *ErrorSink) LastError() string {
	if s.last == nil {
		return ""
	}
	return s.last.Error()
}
