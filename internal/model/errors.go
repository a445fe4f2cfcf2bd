package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDBName    = errors.New("empty db name")
	ErrInvalidDBName  = errors.New(`db name must not contain "/" or be a dot segment`)
	ErrEmptyKey       = errors.New("empty key")
	ErrInvalidTTL     = errors.New("ttl must be zero or a positive whole number of seconds")
	ErrMissingAPIKey  = errors.New("no api key known for db")
	ErrEmptyQueueName = errors.New("empty queue name")
	ErrInvalidLimit   = errors.New("queue limit must be positive")
)

var _ error = &PreconditionError{}

// PreconditionError is returned before any network call is made.
type PreconditionError struct {
	Op  string
	Err error
}

func (err *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", err.Op, err.Err)
}

func (err *PreconditionError) Unwrap() error {
	return err.Err
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnavailable
	KindUnauthenticated
	KindInvalidArgument
	KindConflict
	KindAuthDisabled
	KindNotFound
	KindCanceled
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidArgument:
		return "invalid argument"
	case KindConflict:
		return "conflict"
	case KindAuthDisabled:
		return "api key auth disabled"
	case KindNotFound:
		return "not found"
	case KindCanceled:
		return "canceled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Sentinels matching RemoteError by kind via errors.Is.
var (
	ErrUnavailable     = kindError(KindUnavailable)
	ErrUnauthenticated = kindError(KindUnauthenticated)
	ErrInvalidArgument = kindError(KindInvalidArgument)
	ErrConflict        = kindError(KindConflict)
	ErrAuthDisabled    = kindError(KindAuthDisabled)
	// Only writes and rotations targeting a missing db fail with it.
	// Reads report absence through their found flag.
	ErrNotFound        = kindError(KindNotFound)
	ErrCanceled        = kindError(KindCanceled)
	ErrInternal        = kindError(KindInternal)
)

type kindError ErrorKind

func (k kindError) Error() string {
	return ErrorKind(k).String()
}

var _ error = &RemoteError{}

// RemoteError is the transport-independent shape of a failed call.
// Code holds the HTTP status or the gRPC code name.
type RemoteError struct {
	Transport Transport
	Op        string
	Kind      ErrorKind
	Code      string
	Message   string
	Err       error
}

func (err *RemoteError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", err.Transport, err.Op, err.Kind)
	if err.Code != "" {
		msg += " (" + err.Code + ")"
	}
	if err.Message != "" {
		msg += ": " + err.Message
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *RemoteError) Unwrap() error {
	return err.Err
}

func (err *RemoteError) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && ErrorKind(k) == err.Kind
}

var _ error = &DecodeError{}

// DecodeError reports a response whose shape the client does not understand.
type DecodeError struct {
	Transport Transport
	Op        string
	Err       error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decoding response: %s", err.Transport, err.Op, err.Err)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}
