package grpc_remote_store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/horockey/hydrakv/internal/gateway/remote_store"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/horockey/hydrakv/internal/proto/hydrakvpb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

var _ remote_store.Gateway = &grpcRemoteStore{}

const APIKeyMetadata = "x-api-key"

// grpcRemoteStore sends kv and queue traffic over grpc.
// KVService has no db lifecycle, existence, key rotation or queue creation RPCs,
// so those go through httpGW.
type grpcRemoteStore struct {
	conn    *grpc.ClientConn
	httpGW  remote_store.Gateway
	timeout time.Duration
	metrics *metrics
	logger  zerolog.Logger
}

// New creates gateway with lazily connecting ClientConn.
// Takes ownership of httpGW.
func New(
	host string,
	port int,
	httpGW remote_store.Gateway,
	https bool,
	trustedCert string,
	timeout time.Duration,
	logger zerolog.Logger,
) (*grpcRemoteStore, error) {
	if httpGW == nil {
		return nil, errors.New("got nil http gateway")
	}

	creds := insecure.NewCredentials()
	if https {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if trustedCert != "" {
			pem, err := os.ReadFile(trustedCert)
			if err != nil {
				return nil, fmt.Errorf("reading trusted cert: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errors.New("parsing trusted cert: no certificates found")
			}
			tlsConfig.RootCAs = pool
		}
		creds = credentials.NewTLS(tlsConfig)
	}

	conn, err := grpc.NewClient(
		net.JoinHostPort(host, strconv.Itoa(port)),
		grpc.WithTransportCredentials(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("creating grpc client: %w", err)
	}

	return NewFromConn(conn, httpGW, timeout, logger)
}

// NewFromConn takes ownership of conn and httpGW.
func NewFromConn(
	conn *grpc.ClientConn,
	httpGW remote_store.Gateway,
	timeout time.Duration,
	logger zerolog.Logger,
) (*grpcRemoteStore, error) {
	if httpGW == nil {
		return nil, errors.New("got nil http gateway")
	}

	return &grpcRemoteStore{
		conn:    conn,
		httpGW:  httpGW,
		timeout: timeout,
		metrics: newMetrics(),
		logger:  logger,
	}, nil
}

func (gw *grpcRemoteStore) Metrics() []prometheus.Collector {
	return append(gw.metrics.list(), gw.httpGW.Metrics()...)
}

func (gw *grpcRemoteStore) Transport() model.Transport {
	return model.TransportGRPC
}

func (gw *grpcRemoteStore) Close() error {
	var resErr error
	if err := gw.conn.Close(); err != nil {
		resErr = errors.Join(resErr, fmt.Errorf("closing grpc conn: %w", err))
	}
	if err := gw.httpGW.Close(); err != nil {
		resErr = errors.Join(resErr, fmt.Errorf("closing http gateway: %w", err))
	}
	return resErr
}

func (gw *grpcRemoteStore) CreateDB(ctx context.Context, name string) (string, error) {
	return gw.httpGW.CreateDB(ctx, name)
}

func (gw *grpcRemoteStore) DeleteDB(ctx context.Context, apiKey string, name string) error {
	return gw.httpGW.DeleteDB(ctx, apiKey, name)
}

func (gw *grpcRemoteStore) DBExists(ctx context.Context, apiKey string, name string) (bool, error) {
	return gw.httpGW.DBExists(ctx, apiKey, name)
}

func (gw *grpcRemoteStore) RenewAPIKey(ctx context.Context, apiKey string, name string) (string, error) {
	return gw.httpGW.RenewAPIKey(ctx, apiKey, name)
}

func (gw *grpcRemoteStore) Set(ctx context.Context, apiKey string, e model.Entry) (resErr error) {
	const op = "set"
	defer gw.observe(op, time.Now(), &resErr)

	if _, err := gw.invoke(ctx, op, hydrakvpb.MethodSet, apiKey, setRequest(apiKey, e)); err != nil {
		return statusError(ctx, op, err)
	}

	return nil
}

func (gw *grpcRemoteStore) Get(
	ctx context.Context,
	apiKey string,
	db string,
	key string,
) (_ string, _ bool, resErr error) {
	const op = "get"
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgGetRequest).
		SetString("db", db).
		SetString("apikey", apiKey).
		SetString("key", key)

	resp, err := gw.invoke(ctx, op, hydrakvpb.MethodGet, apiKey, req)
	switch {
	case err == nil:
		return resp.GetString("value"), true, nil
	case status.Code(err) == codes.NotFound:
		return "", false, nil
	default:
		return "", false, statusError(ctx, op, err)
	}
}

func (gw *grpcRemoteStore) SetNX(ctx context.Context, apiKey string, e model.Entry) (_ bool, resErr error) {
	const op = "setnx"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.invoke(ctx, op, hydrakvpb.MethodSetNX, apiKey, setRequest(apiKey, e))
	switch {
	case err == nil:
		return resp.GetBool("ok"), nil
	case status.Code(err) == codes.AlreadyExists:
		return false, nil
	default:
		return false, statusError(ctx, op, err)
	}
}

func (gw *grpcRemoteStore) Incr(
	ctx context.Context,
	apiKey string,
	db string,
	key string,
	delta int64,
) (_ int64, resErr error) {
	const op = "incr"
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgIncrRequest).
		SetString("db", db).
		SetString("apikey", apiKey).
		SetString("key", key).
		SetString("amount", strconv.FormatInt(delta, 10))

	resp, err := gw.invoke(ctx, op, hydrakvpb.MethodIncr, apiKey, req)
	if err != nil {
		return 0, statusError(ctx, op, err)
	}

	return resp.GetInt64("value"), nil
}

func (gw *grpcRemoteStore) Delete(ctx context.Context, apiKey string, db string, key string) (resErr error) {
	const op = "delete"
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgDeleteRequest).
		SetString("db", db).
		SetString("apikey", apiKey).
		SetString("key", key)

	_, err := gw.invoke(ctx, op, hydrakvpb.MethodDelete, apiKey, req)
	switch {
	case err == nil, status.Code(err) == codes.NotFound:
		return nil
	default:
		return statusError(ctx, op, err)
	}
}

func (gw *grpcRemoteStore) CreateQueue(ctx context.Context, name string, limit int64) error {
	return gw.httpGW.CreateQueue(ctx, name, limit)
}

func (gw *grpcRemoteStore) Push(ctx context.Context, name string, value string) (resErr error) {
	const op = "queue_push"
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgFiFoLiFoPushRequest).
		SetString("name", name).
		SetString("value", value)

	if _, err := gw.invoke(ctx, op, hydrakvpb.MethodFiFoLiFoPush, "", req); err != nil {
		return statusError(ctx, op, err)
	}

	return nil
}

func (gw *grpcRemoteStore) PopFIFO(ctx context.Context, name string) (string, bool, error) {
	return gw.pop(ctx, "fifo_pop", hydrakvpb.MethodFiFoLiFoFPop, name)
}

func (gw *grpcRemoteStore) PopLIFO(ctx context.Context, name string) (string, bool, error) {
	return gw.pop(ctx, "lifo_pop", hydrakvpb.MethodFiFoLiFoLPop, name)
}

func (gw *grpcRemoteStore) DeleteQueue(ctx context.Context, name string) (resErr error) {
	const op = "queue_delete"
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgFiFoLiFoDeleteRequest).SetString("name", name)

	_, err := gw.invoke(ctx, op, hydrakvpb.MethodFiFoLiFoDelete, "", req)
	switch {
	case err == nil, status.Code(err) == codes.NotFound:
		return nil
	default:
		return statusError(ctx, op, err)
	}
}

func (gw *grpcRemoteStore) pop(
	ctx context.Context,
	op string,
	method hydrakvpb.Method,
	name string,
) (_ string, _ bool, resErr error) {
	defer gw.observe(op, time.Now(), &resErr)

	req := hydrakvpb.New(hydrakvpb.MsgFiFoLiFoPopRequest).SetString("name", name)

	resp, err := gw.invoke(ctx, op, method, "", req)
	switch {
	case err == nil:
		return resp.GetString("value"), true, nil
	case status.Code(err) == codes.NotFound:
		return "", false, nil
	default:
		return "", false, statusError(ctx, op, err)
	}
}

func (gw *grpcRemoteStore) invoke(
	ctx context.Context,
	op string,
	method hydrakvpb.Method,
	apiKey string,
	req hydrakvpb.Message,
) (hydrakvpb.Message, error) {
	gw.logger.Debug().Str("op", op).Str("method", method.FullName()).Msg("sending request")

	if gw.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gw.timeout)
		defer cancel()
	}
	if apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, APIKeyMetadata, apiKey)
	}

	var raw frame
	if err := gw.conn.Invoke(ctx, method.FullName(), req, &raw, grpc.ForceCodec(frameCodec{})); err != nil {
		return hydrakvpb.Message{}, err
	}

	resp := hydrakvpb.New(method.Output)
	if err := proto.Unmarshal(raw, resp); err != nil {
		return resp, &model.DecodeError{
			Transport: model.TransportGRPC,
			Op:        op,
			Err:       fmt.Errorf("unmarshaling %s: %w", method.Output, err),
		}
	}

	return resp, nil
}

func (gw *grpcRemoteStore) observe(op string, ts time.Time, resErr *error) {
	gw.metrics.requestsCnt.WithLabelValues(op).Inc()
	gw.metrics.handleTimeHist.WithLabelValues(op).Observe(time.Since(ts).Seconds())

	if *resErr == nil {
		gw.metrics.successProcessCnt.WithLabelValues(op).Inc()
		return
	}

	gw.metrics.errProcessCnt.WithLabelValues(op).Inc()

	var re *model.RemoteError
	if errors.As(*resErr, &re) {
		gw.logger.Debug().Str("op", op).Str("code", re.Code).Str("kind", re.Kind.String()).Msg("request failed")
	}
}

func setRequest(apiKey string, e model.Entry) hydrakvpb.Message {
	return hydrakvpb.New(hydrakvpb.MsgSetRequest).
		SetString("db", e.DB).
		SetString("apikey", apiKey).
		SetString("key", e.Key).
		SetString("value", e.Value).
		SetInt64("ttl", e.TTLSeconds())
}
