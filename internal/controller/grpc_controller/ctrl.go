package grpc_controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/horockey/hydrakv/internal/proto/hydrakvpb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const APIKeyMetadata = "x-api-key"

var _ kvServiceHandler = &GrpcController{}

type GrpcController struct {
	serv    *grpc.Server
	svc     *fakeservice.Service
	logger  zerolog.Logger
	metrics *metrics
}

func New(svc *fakeservice.Service, logger zerolog.Logger, opts ...grpc.ServerOption) *GrpcController {
	ctrl := GrpcController{
		svc:     svc,
		logger:  logger,
		metrics: newMetrics(),
	}

	ctrl.serv = grpc.NewServer(append(opts, grpc.ChainUnaryInterceptor(ctrl.metricsInterceptor))...)
	desc := newServiceDesc()
	ctrl.serv.RegisterService(&desc, &ctrl)

	return &ctrl
}

func (ctrl *GrpcController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

// Start serves on l until ctx is done.
func (ctrl *GrpcController) Start(ctx context.Context, l net.Listener) (resErr error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.serv.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		stopped := make(chan struct{})
		go func() {
			ctrl.serv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			ctrl.serv.Stop()
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

func (ctrl *GrpcController) metricsInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, resErr error) {
	ctrl.metrics.requestsCnt.Inc()
	defer func(ts time.Time) {
		ctrl.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())
		switch resErr {
		case nil:
			ctrl.metrics.successProcessCnt.Inc()
		default:
			ctrl.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	return handler(ctx, req)
}

//nolint: gocyclo
func (ctrl *GrpcController) handle(
	ctx context.Context,
	m hydrakvpb.Method,
	req hydrakvpb.Message,
) (hydrakvpb.Message, error) {
	resp := hydrakvpb.New(m.Output)

	var err error
	switch m {
	case hydrakvpb.MethodSet:
		err = ctrl.svc.Set(
			apiKey(ctx, req),
			req.GetString("db"),
			req.GetString("key"),
			req.GetString("value"),
			time.Duration(req.GetInt64("ttl"))*time.Second,
		)
		resp.SetBool("ok", err == nil)

	case hydrakvpb.MethodSetNX:
		err = ctrl.svc.SetNX(
			apiKey(ctx, req),
			req.GetString("db"),
			req.GetString("key"),
			req.GetString("value"),
			time.Duration(req.GetInt64("ttl"))*time.Second,
		)
		resp.SetBool("ok", err == nil)

	case hydrakvpb.MethodGet:
		var val string
		val, err = ctrl.svc.Get(apiKey(ctx, req), req.GetString("db"), req.GetString("key"))
		resp.SetString("value", val)

	case hydrakvpb.MethodIncr:
		var delta, val int64
		delta, err = strconv.ParseInt(req.GetString("amount"), 10, 64)
		if err != nil {
			err = fmt.Errorf("%w: parsing amount: %w", fakeservice.ErrInvalidArgument, err)
			break
		}
		val, err = ctrl.svc.Incr(apiKey(ctx, req), req.GetString("db"), req.GetString("key"), delta)
		resp.SetInt64("value", val)

	case hydrakvpb.MethodDelete:
		err = ctrl.svc.Delete(apiKey(ctx, req), req.GetString("db"), req.GetString("key"))
		resp.SetBool("ok", err == nil)

	case hydrakvpb.MethodFiFoLiFoPush:
		err = ctrl.svc.Push(req.GetString("name"), req.GetString("value"))
		resp.SetBool("ok", err == nil)

	case hydrakvpb.MethodFiFoLiFoFPop:
		var val string
		val, err = ctrl.svc.PopFront(req.GetString("name"))
		resp.SetString("value", val)

	case hydrakvpb.MethodFiFoLiFoLPop:
		var val string
		val, err = ctrl.svc.PopBack(req.GetString("name"))
		resp.SetString("value", val)

	case hydrakvpb.MethodFiFoLiFoDelete:
		err = ctrl.svc.DeleteQueue(req.GetString("name"))
		resp.SetBool("ok", err == nil)

	default:
		return resp, status.Errorf(codes.Unimplemented, "method %s not implemented", m.Name)
	}

	if err != nil {
		return resp, ctrl.statusErr(m, err)
	}

	return resp, nil
}

func (ctrl *GrpcController) statusErr(m hydrakvpb.Method, err error) error {
	code := CodeByErr(err)
	if code == codes.Internal {
		ctrl.logger.Error().Err(fmt.Errorf("handling %s: %w", m.Name, err)).Send()
	} else {
		ctrl.logger.Debug().Err(err).Str("method", m.Name).Str("code", code.String()).Msg("request rejected")
	}

	return status.Error(code, err.Error())
}

// apiKey prefers metadata over the request field.
func apiKey(ctx context.Context, req hydrakvpb.Message) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(APIKeyMetadata); len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return req.GetString("apikey")
}

func CodeByErr(err error) codes.Code {
	switch {
	case errors.Is(err, fakeservice.ErrInvalidArgument),
		errors.Is(err, fakeservice.ErrNotInteger):
		return codes.InvalidArgument
	case errors.Is(err, fakeservice.ErrUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, fakeservice.ErrDBNotFound),
		errors.Is(err, fakeservice.ErrKeyNotFound),
		errors.Is(err, fakeservice.ErrQueueNotFound),
		errors.Is(err, fakeservice.ErrQueueEmpty):
		return codes.NotFound
	case errors.Is(err, fakeservice.ErrDBExists),
		errors.Is(err, fakeservice.ErrKeyExists),
		errors.Is(err, fakeservice.ErrQueueExists):
		return codes.AlreadyExists
	case errors.Is(err, fakeservice.ErrQueueFull):
		return codes.ResourceExhausted
	case errors.Is(err, fakeservice.ErrAuthDisabled):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
