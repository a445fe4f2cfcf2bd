package http_controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/horockey/go-toolbox/http_helpers"
	"github.com/horockey/hydrakv/internal/controller/http_controller/dto"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	APIKeyHeader = "X-API-Key"
	MethodUpdate = "UPDATE"
)

type HttpController struct {
	serv    *http.Server
	svc     *fakeservice.Service
	logger  zerolog.Logger
	metrics *metrics
}

func New(svc *fakeservice.Service, logger zerolog.Logger) *HttpController {
	ctrl := HttpController{
		svc:     svc,
		logger:  logger,
		metrics: newMetrics(),
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	router.HandleFunc("/create", ctrl.postCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/db/{db}", ctrl.getDBHandler).Methods(http.MethodGet)
	router.HandleFunc("/db/{db}", ctrl.deleteDBHandler).Methods(http.MethodDelete)
	router.HandleFunc("/db/{db}", ctrl.updateDBHandler).Methods(MethodUpdate)
	router.HandleFunc("/db/{db}", ctrl.putDBHandler).Methods(http.MethodPut)
	router.HandleFunc("/db/{db}", ctrl.postDBHandler).Methods(http.MethodPost)
	router.HandleFunc("/db/{db}", ctrl.patchDBHandler).Methods(http.MethodPatch)
	router.HandleFunc("/db/{db}/keys", ctrl.postKeysHandler).Methods(http.MethodPost)
	router.HandleFunc("/db/{db}/keys", ctrl.deleteKeysHandler).Methods(http.MethodDelete)
	router.HandleFunc("/fifolifo", ctrl.postQueueHandler).Methods(http.MethodPost)
	router.HandleFunc("/fifolifo", ctrl.putQueueHandler).Methods(http.MethodPut)
	router.HandleFunc("/fifolifo", ctrl.deleteQueueHandler).Methods(http.MethodDelete)
	router.HandleFunc("/fifo", ctrl.popHandler(ctrl.svc.PopFront)).Methods(http.MethodPost)
	router.HandleFunc("/lifo", ctrl.popHandler(ctrl.svc.PopBack)).Methods(http.MethodPost)
	router.Use(ctrl.metricsMW)

	ctrl.serv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint: mnd
	}

	return &ctrl
}

func (ctrl *HttpController) Handler() http.Handler {
	return ctrl.serv.Handler
}

func (ctrl *HttpController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

// Start serves on l until ctx is done.
func (ctrl *HttpController) Start(ctx context.Context, l net.Listener) (resErr error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.serv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := ctrl.serv.Shutdown(sdCtx); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("shutting down server: %w", err))
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

func (ctrl *HttpController) metricsMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctrl.metrics.requestsCnt.Inc()
		defer func(ts time.Time) {
			ctrl.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())
		}(time.Now())

		next.ServeHTTP(w, req)
	})
}

func (ctrl *HttpController) postCreateHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.CreateDB{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	key, err := ctrl.svc.CreateDB(body.Name)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("creating db: %w", err))
		return
	}

	ctrl.respondOK(w, dto.APIKey{APIKey: key})
}

func (ctrl *HttpController) getDBHandler(w http.ResponseWriter, req *http.Request) {
	ctrl.respondOK(w, dto.Exists{Exists: ctrl.svc.DBExists(mux.Vars(req)["db"])})
}

func (ctrl *HttpController) deleteDBHandler(w http.ResponseWriter, req *http.Request) {
	if err := ctrl.svc.DeleteDB(req.Header.Get(APIKeyHeader), mux.Vars(req)["db"]); err != nil {
		ctrl.respondErr(w, fmt.Errorf("deleting db: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) updateDBHandler(w http.ResponseWriter, req *http.Request) {
	key, err := ctrl.svc.RenewAPIKey(req.Header.Get(APIKeyHeader), mux.Vars(req)["db"])
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("renewing api key: %w", err))
		return
	}

	ctrl.respondOK(w, dto.APIKey{APIKey: key})
}

func (ctrl *HttpController) putDBHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.KeyRequest{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.Set(
		apiKey(req, body.APIKey),
		mux.Vars(req)["db"],
		body.Key,
		body.Value,
		time.Duration(body.TTL)*time.Second,
	); err != nil {
		ctrl.respondErr(w, fmt.Errorf("setting key: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) postDBHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.KeyRequest{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.SetNX(
		apiKey(req, body.APIKey),
		mux.Vars(req)["db"],
		body.Key,
		body.Value,
		time.Duration(body.TTL)*time.Second,
	); err != nil {
		ctrl.respondErr(w, fmt.Errorf("setting key if absent: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) patchDBHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.KeyRequest{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	val, err := ctrl.svc.Incr(apiKey(req, body.APIKey), mux.Vars(req)["db"], body.Key, body.Delta)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("incrementing key: %w", err))
		return
	}

	ctrl.respondOK(w, dto.IncrResult{Value: val})
}

func (ctrl *HttpController) postKeysHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.KeyRequest{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	val, err := ctrl.svc.Get(apiKey(req, body.APIKey), mux.Vars(req)["db"], body.Key)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("getting key: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Value{Value: val})
}

func (ctrl *HttpController) deleteKeysHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.KeyRequest{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.Delete(apiKey(req, body.APIKey), mux.Vars(req)["db"], body.Key); err != nil {
		ctrl.respondErr(w, fmt.Errorf("deleting key: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) postQueueHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.Queue{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.CreateQueue(body.Name, body.Limit); err != nil {
		ctrl.respondErr(w, fmt.Errorf("creating queue: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) putQueueHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.Queue{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.Push(body.Name, body.Value); err != nil {
		ctrl.respondErr(w, fmt.Errorf("pushing to queue: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) deleteQueueHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.Queue{}
	if !ctrl.decode(w, req, &body) {
		return
	}

	if err := ctrl.svc.DeleteQueue(body.Name); err != nil {
		ctrl.respondErr(w, fmt.Errorf("deleting queue: %w", err))
		return
	}

	ctrl.respondOK(w, dto.Ok{Ok: true})
}

func (ctrl *HttpController) popHandler(pop func(string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body := dto.Queue{}
		if !ctrl.decode(w, req, &body) {
			return
		}

		val, err := pop(body.Name)
		if err != nil {
			ctrl.respondErr(w, fmt.Errorf("popping from queue: %w", err))
			return
		}

		ctrl.respondOK(w, dto.Value{Value: val})
	}
}

func (ctrl *HttpController) decode(w http.ResponseWriter, req *http.Request, target any) bool {
	if err := json.NewDecoder(req.Body).Decode(target); err != nil {
		ctrl.respondErr(w, fmt.Errorf("%w: decoding body dto: %w", fakeservice.ErrInvalidArgument, err))
		return false
	}
	return true
}

func (ctrl *HttpController) respondOK(w http.ResponseWriter, body any) {
	ctrl.metrics.successProcessCnt.Inc()
	_ = http_helpers.RespondOK(w, body)
}

func (ctrl *HttpController) respondErr(w http.ResponseWriter, err error) {
	ctrl.metrics.errProcessCnt.Inc()

	code := StatusByErr(err)
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		ctrl.logger.Error().Err(err).Send()
	} else {
		ctrl.logger.Debug().Err(err).Int("status", code).Msg("request rejected")
	}

	_ = http_helpers.RespondWithErr(w, code, err)
}

func apiKey(req *http.Request, bodyKey string) string {
	if key := req.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	return bodyKey
}

func StatusByErr(err error) int {
	switch {
	case errors.Is(err, fakeservice.ErrInvalidArgument),
		errors.Is(err, fakeservice.ErrNotInteger):
		return http.StatusBadRequest
	case errors.Is(err, fakeservice.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, fakeservice.ErrDBNotFound),
		errors.Is(err, fakeservice.ErrKeyNotFound),
		errors.Is(err, fakeservice.ErrQueueNotFound),
		errors.Is(err, fakeservice.ErrQueueEmpty):
		return http.StatusNotFound
	case errors.Is(err, fakeservice.ErrDBExists),
		errors.Is(err, fakeservice.ErrKeyExists),
		errors.Is(err, fakeservice.ErrQueueExists),
		errors.Is(err, fakeservice.ErrQueueFull):
		return http.StatusConflict
	case errors.Is(err, fakeservice.ErrAuthDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
