package hydrakv

import "github.com/horockey/hydrakv/internal/model"

type (
	PreconditionError = model.PreconditionError
	RemoteError       = model.RemoteError
	DecodeError       = model.DecodeError
	ErrorKind         = model.ErrorKind
)

const (
	KindUnknown         = model.KindUnknown
	KindUnavailable     = model.KindUnavailable
	KindUnauthenticated = model.KindUnauthenticated
	KindInvalidArgument = model.KindInvalidArgument
	KindConflict        = model.KindConflict
	KindAuthDisabled    = model.KindAuthDisabled
	KindNotFound        = model.KindNotFound
	KindCanceled        = model.KindCanceled
	KindInternal        = model.KindInternal
)

var (
	ErrEmptyDBName    = model.ErrEmptyDBName
	ErrInvalidDBName  = model.ErrInvalidDBName
	ErrEmptyKey       = model.ErrEmptyKey
	ErrInvalidTTL     = model.ErrInvalidTTL
	ErrMissingAPIKey  = model.ErrMissingAPIKey
	ErrEmptyQueueName = model.ErrEmptyQueueName
	ErrInvalidLimit   = model.ErrInvalidLimit

	ErrUnavailable     = model.ErrUnavailable
	ErrUnauthenticated = model.ErrUnauthenticated
	ErrInvalidArgument = model.ErrInvalidArgument
	ErrConflict        = model.ErrConflict
	ErrAuthDisabled    = model.ErrAuthDisabled
	ErrNotFound        = model.ErrNotFound
	ErrCanceled        = model.ErrCanceled
	ErrInternal        = model.ErrInternal
)
