package grpc_remote_store

import (
	"context"
	"errors"
	"fmt"

	"github.com/horockey/hydrakv/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func kindByCode(c codes.Code) model.ErrorKind {
	switch c {
	case codes.InvalidArgument, codes.OutOfRange:
		return model.KindInvalidArgument
	case codes.Unauthenticated, codes.PermissionDenied:
		return model.KindUnauthenticated
	case codes.AlreadyExists, codes.Aborted, codes.ResourceExhausted:
		return model.KindConflict
	case codes.NotFound:
		return model.KindNotFound
	case codes.Unavailable:
		return model.KindUnavailable
	case codes.Canceled, codes.DeadlineExceeded:
		return model.KindCanceled
	case codes.Internal, codes.DataLoss:
		return model.KindInternal
	default:
		return model.KindUnknown
	}
}

// statusError normalizes a failed invoke. Decode errors pass through as is.
func statusError(ctx context.Context, op string, err error) error {
	var de *model.DecodeError
	if errors.As(err, &de) {
		return err
	}
	return remoteError(ctx, op, err)
}

// remoteError keeps a caller-side context error matchable with errors.Is.
func remoteError(ctx context.Context, op string, err error) *model.RemoteError {
	st := status.Convert(err)

	res := &model.RemoteError{
		Transport: model.TransportGRPC,
		Op:        op,
		Kind:      kindByCode(st.Code()),
		Code:      st.Code().String(),
		Message:   st.Message(),
		Err:       err,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Kind = model.KindCanceled
		res.Err = fmt.Errorf("%w: %w", ctxErr, err)
	}

	return res
}
