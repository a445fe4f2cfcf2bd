package http_remote_store

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/hydrakv/internal/gateway/remote_store"
	"github.com/horockey/hydrakv/internal/gateway/remote_store/http_remote_store/dto"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ remote_store.Gateway = &httpRemoteStore{}

const (
	APIKeyHeader = "X-API-Key"

	// Non-standard verb the service uses for key rotation.
	MethodUpdate = "UPDATE"
)

type httpRemoteStore struct {
	cl      *resty.Client
	metrics *metrics
	logger  zerolog.Logger
}

func New(
	host string,
	port int,
	https bool,
	trustedCert string,
	timeout time.Duration,
	logger zerolog.Logger,
) (*httpRemoteStore, error) {
	scheme := "http"
	if https {
		scheme = "https"
	}

	cl := resty.New().
		SetBaseURL(scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))).
		SetRetryCount(0).
		SetTimeout(timeout)

	if trustedCert != "" {
		pem, err := os.ReadFile(trustedCert)
		if err != nil {
			return nil, fmt.Errorf("reading trusted cert: %w", err)
		}
		if !x509.NewCertPool().AppendCertsFromPEM(pem) {
			return nil, errors.New("parsing trusted cert: no certificates found")
		}
		cl.SetRootCertificateFromString(string(pem))
	}

	return &httpRemoteStore{
		cl:      cl,
		metrics: newMetrics(),
		logger:  logger,
	}, nil
}

func (gw *httpRemoteStore) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *httpRemoteStore) Transport() model.Transport {
	return model.TransportHTTP
}

func (gw *httpRemoteStore) Close() error {
	gw.cl.GetClient().CloseIdleConnections()
	return nil
}

func (gw *httpRemoteStore) CreateDB(ctx context.Context, name string) (apiKey string, resErr error) {
	const op = "create_db"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPost, "/create", "", nil, dto.CreateDB{Name: name})
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", statusError(op, resp)
	}

	// Without api key auth the service acknowledges with no key.
	if len(resp.Body()) == 0 {
		return "", nil
	}
	res, err := decode[dto.APIKey](op, resp.Body())
	if err != nil {
		return "", err
	}
	if res.APIKey == nil {
		return "", nil
	}

	return *res.APIKey, nil
}

func (gw *httpRemoteStore) DeleteDB(ctx context.Context, apiKey string, name string) (resErr error) {
	const op = "delete_db"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodDelete, "/db/{db}", apiKey, map[string]string{"db": name}, nil)
	if err != nil {
		return err
	}
	switch {
	case resp.IsSuccess(), resp.StatusCode() == http.StatusNotFound:
		return nil
	default:
		return statusError(op, resp)
	}
}

func (gw *httpRemoteStore) DBExists(ctx context.Context, apiKey string, name string) (_ bool, resErr error) {
	const op = "db_exists"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodGet, "/db/{db}", apiKey, map[string]string{"db": name}, nil)
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, statusError(op, resp)
	}

	res, err := decode[dto.Exists](op, resp.Body())
	if err != nil {
		return false, err
	}
	if res.Exists == nil {
		return false, missingField(op, "exists")
	}

	return *res.Exists, nil
}

func (gw *httpRemoteStore) RenewAPIKey(ctx context.Context, apiKey string, name string) (_ string, resErr error) {
	const op = "renew_api_key"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, MethodUpdate, "/db/{db}", apiKey, map[string]string{"db": name}, nil)
	if err != nil {
		return "", err
	}
	switch {
	case resp.IsSuccess():
		break
	case resp.StatusCode() == http.StatusServiceUnavailable:
		e := statusError(op, resp)
		e.Kind = model.KindAuthDisabled
		return "", e
	default:
		return "", statusError(op, resp)
	}

	res, err := decode[dto.APIKey](op, resp.Body())
	if err != nil {
		return "", err
	}
	if res.APIKey == nil || *res.APIKey == "" {
		return "", missingField(op, "apikey")
	}

	return *res.APIKey, nil
}

func (gw *httpRemoteStore) Set(ctx context.Context, apiKey string, e model.Entry) (resErr error) {
	const op = "set"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPut, "/db/{db}", apiKey, map[string]string{"db": e.DB}, dto.Set{
		Key:    e.Key,
		Value:  e.Value,
		TTL:    e.TTLSeconds(),
		APIKey: apiKey,
	})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError(op, resp)
	}

	return nil
}

func (gw *httpRemoteStore) Get(
	ctx context.Context,
	apiKey string,
	db string,
	key string,
) (_ string, _ bool, resErr error) {
	const op = "get"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPost, "/db/{db}/keys", apiKey, map[string]string{"db": db}, dto.Get{
		Key:    key,
		APIKey: apiKey,
	})
	if err != nil {
		return "", false, err
	}
	switch {
	case resp.IsSuccess():
		break
	case resp.StatusCode() == http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, statusError(op, resp)
	}

	res, err := decode[dto.Value](op, resp.Body())
	if err != nil {
		return "", false, err
	}
	if res.Value == nil {
		return "", false, missingField(op, "value")
	}

	return *res.Value, true, nil
}

func (gw *httpRemoteStore) SetNX(ctx context.Context, apiKey string, e model.Entry) (_ bool, resErr error) {
	const op = "setnx"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPost, "/db/{db}", apiKey, map[string]string{"db": e.DB}, dto.Set{
		Key:    e.Key,
		Value:  e.Value,
		TTL:    e.TTLSeconds(),
		APIKey: apiKey,
	})
	if err != nil {
		return false, err
	}
	switch {
	case resp.IsSuccess():
		break
	case resp.StatusCode() == http.StatusConflict:
		return false, nil
	default:
		return false, statusError(op, resp)
	}

	res, err := decode[dto.Ok](op, resp.Body())
	if err != nil {
		return false, err
	}
	if res.Ok == nil {
		return false, missingField(op, "ok")
	}

	return *res.Ok, nil
}

func (gw *httpRemoteStore) Incr(
	ctx context.Context,
	apiKey string,
	db string,
	key string,
	delta int64,
) (_ int64, resErr error) {
	const op = "incr"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPatch, "/db/{db}", apiKey, map[string]string{"db": db}, dto.Incr{
		Key:    key,
		Delta:  delta,
		APIKey: apiKey,
	})
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, statusError(op, resp)
	}

	res, err := decode[dto.IncrResult](op, resp.Body())
	if err != nil {
		return 0, err
	}
	if res.Value == nil {
		return 0, missingField(op, "value")
	}

	return *res.Value, nil
}

func (gw *httpRemoteStore) Delete(ctx context.Context, apiKey string, db string, key string) (resErr error) {
	const op = "delete"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodDelete, "/db/{db}/keys", apiKey, map[string]string{"db": db}, dto.Delete{
		Key:    key,
		APIKey: apiKey,
	})
	if err != nil {
		return err
	}
	switch {
	case resp.IsSuccess(), resp.StatusCode() == http.StatusNotFound:
		return nil
	default:
		return statusError(op, resp)
	}
}

func (gw *httpRemoteStore) CreateQueue(ctx context.Context, name string, limit int64) (resErr error) {
	const op = "queue_create"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPost, "/fifolifo", "", nil, dto.QueueCreate{Name: name, Limit: limit})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError(op, resp)
	}

	return nil
}

func (gw *httpRemoteStore) Push(ctx context.Context, name string, value string) (resErr error) {
	const op = "queue_push"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPut, "/fifolifo", "", nil, dto.QueuePush{Name: name, Value: value})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return statusError(op, resp)
	}

	return nil
}

func (gw *httpRemoteStore) PopFIFO(ctx context.Context, name string) (string, bool, error) {
	return gw.pop(ctx, "fifo_pop", "/fifo", name)
}

func (gw *httpRemoteStore) PopLIFO(ctx context.Context, name string) (string, bool, error) {
	return gw.pop(ctx, "lifo_pop", "/lifo", name)
}

func (gw *httpRemoteStore) DeleteQueue(ctx context.Context, name string) (resErr error) {
	const op = "queue_delete"
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodDelete, "/fifolifo", "", nil, dto.QueueName{Name: name})
	if err != nil {
		return err
	}
	switch {
	case resp.IsSuccess(), resp.StatusCode() == http.StatusNotFound:
		return nil
	default:
		return statusError(op, resp)
	}
}

func (gw *httpRemoteStore) pop(ctx context.Context, op string, path string, name string) (_ string, _ bool, resErr error) {
	defer gw.observe(op, time.Now(), &resErr)

	resp, err := gw.do(ctx, op, http.MethodPost, path, "", nil, dto.QueueName{Name: name})
	if err != nil {
		return "", false, err
	}
	switch {
	case resp.IsSuccess():
		break
	case resp.StatusCode() == http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, statusError(op, resp)
	}

	res, err := decode[dto.Value](op, resp.Body())
	if err != nil {
		return "", false, err
	}
	if res.Value == nil {
		return "", false, missingField(op, "value")
	}

	return *res.Value, true, nil
}

func (gw *httpRemoteStore) do(
	ctx context.Context,
	op string,
	method string,
	path string,
	apiKey string,
	pathParams map[string]string,
	body any,
) (*resty.Response, error) {
	gw.logger.Debug().Str("op", op).Str("method", method).Str("path", path).Msg("sending request")

	req := gw.cl.R().
		SetContext(ctx).
		SetPathParams(pathParams)
	if apiKey != "" {
		req.SetHeader(APIKeyHeader, apiKey)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, requestError(op, err)
	}

	return resp, nil
}

func (gw *httpRemoteStore) observe(op string, ts time.Time, resErr *error) {
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
