package grpc_controller_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/horockey/hydrakv/internal/controller/grpc_controller"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func Test_CodeByErr(t *testing.T) {
	for err, code := range map[error]codes.Code{
		fakeservice.ErrInvalidArgument: codes.InvalidArgument,
		fakeservice.ErrNotInteger:      codes.InvalidArgument,
		fakeservice.ErrUnauthorized:    codes.Unauthenticated,
		fakeservice.ErrDBNotFound:      codes.NotFound,
		fakeservice.ErrQueueEmpty:      codes.NotFound,
		fakeservice.ErrKeyExists:       codes.AlreadyExists,
		fakeservice.ErrQueueExists:     codes.AlreadyExists,
		fakeservice.ErrQueueFull:       codes.ResourceExhausted,
		fakeservice.ErrAuthDisabled:    codes.FailedPrecondition,
		errors.New("boom"):             codes.Internal,
	} {
		assert.Equal(t, code, grpc_controller.CodeByErr(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func Test_StartStop(t *testing.T) {
	svc, err := fakeservice.New()
	require.NoError(t, err)

	ctrl := grpc_controller.New(svc, zerolog.Nop())
	assert.NotEmpty(t, ctrl.Metrics())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Start(ctx, l) }()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
}
