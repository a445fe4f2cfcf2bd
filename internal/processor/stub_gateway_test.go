package processor_test

import (
	"context"
	"sync"

	"github.com/horockey/hydrakv/internal/gateway/remote_store"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

var _ remote_store.Gateway = &stubGateway{}

type call struct {
	op     string
	apiKey string
	db     string
	entry  model.Entry
}

// stubGateway records calls and answers with canned values.
type stubGateway struct {
	mu    sync.Mutex
	calls []call

	createKey string
	renewKey  string
	value     string
	found     bool
	written   bool
	counter   int64
	err       error
	closed    bool
}

func (gw *stubGateway) record(c call) error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.calls = append(gw.calls, c)
	return gw.err
}

func (gw *stubGateway) Calls() []call {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return append([]call(nil), gw.calls...)
}

func (gw *stubGateway) Metrics() []prometheus.Collector { return nil }

func (gw *stubGateway) Transport() model.Transport { return model.TransportHTTP }

func (gw *stubGateway) Close() error {
	gw.closed = true
	return nil
}

func (gw *stubGateway) CreateDB(_ context.Context, name string) (string, error) {
	return gw.createKey, gw.record(call{op: "create_db", db: name})
}

func (gw *stubGateway) DeleteDB(_ context.Context, apiKey string, name string) error {
	return gw.record(call{op: "delete_db", apiKey: apiKey, db: name})
}

func (gw *stubGateway) DBExists(_ context.Context, apiKey string, name string) (bool, error) {
	return gw.found, gw.record(call{op: "db_exists", apiKey: apiKey, db: name})
}

func (gw *stubGateway) RenewAPIKey(_ context.Context, apiKey string, name string) (string, error) {
	return gw.renewKey, gw.record(call{op: "renew_api_key", apiKey: apiKey, db: name})
}

func (gw *stubGateway) Set(_ context.Context, apiKey string, e model.Entry) error {
	return gw.record(call{op: "set", apiKey: apiKey, db: e.DB, entry: e})
}

func (gw *stubGateway) Get(_ context.Context, apiKey string, db string, key string) (string, bool, error) {
	return gw.value, gw.found, gw.record(call{op: "get", apiKey: apiKey, db: db, entry: model.Entry{DB: db, Key: key}})
}

func (gw *stubGateway) SetNX(_ context.Context, apiKey string, e model.Entry) (bool, error) {
	return gw.written, gw.record(call{op: "setnx", apiKey: apiKey, db: e.DB, entry: e})
}

func (gw *stubGateway) Incr(_ context.Context, apiKey string, db string, key string, _ int64) (int64, error) {
	return gw.counter, gw.record(call{op: "incr", apiKey: apiKey, db: db, entry: model.Entry{DB: db, Key: key}})
}

func (gw *stubGateway) Delete(_ context.Context, apiKey string, db string, key string) error {
	return gw.record(call{op: "delete", apiKey: apiKey, db: db, entry: model.Entry{DB: db, Key: key}})
}

func (gw *stubGateway) CreateQueue(_ context.Context, name string, _ int64) error {
	return gw.record(call{op: "queue_create", db: name})
}

func (gw *stubGateway) Push(_ context.Context, name string, value string) error {
	return gw.record(call{op: "queue_push", db: name, entry: model.Entry{Value: value}})
}

func (gw *stubGateway) PopFIFO(_ context.Context, name string) (string, bool, error) {
	return gw.value, gw.found, gw.record(call{op: "fifo_pop", db: name})
}

func (gw *stubGateway) PopLIFO(_ context.Context, name string) (string, bool, error) {
	return gw.value, gw.found, gw.record(call{op: "lifo_pop", db: name})
}

func (gw *stubGateway) DeleteQueue(_ context.Context, name string) error {
	return gw.record(call{op: "queue_delete", db: name})
}
