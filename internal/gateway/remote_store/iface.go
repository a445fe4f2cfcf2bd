package remote_store

import (
	"context"

	"github.com/horockey/hydrakv/internal/model"
)

// Gateway is a transport strategy talking to HydraKV.
// apiKey is attached as a credential when non-empty.
// Not-found is reported through the found flag, never as an error.
type Gateway interface {
	model.MetricsProvider
	Transport() model.Transport
	Close() error

	CreateDB(ctx context.Context, name string) (apiKey string, err error)
	DeleteDB(ctx context.Context, apiKey string, name string) error
	DBExists(ctx context.Context, apiKey string, name string) (bool, error)
	RenewAPIKey(ctx context.Context, apiKey string, name string) (string, error)

	Set(ctx context.Context, apiKey string, e model.Entry) error
	Get(ctx context.Context, apiKey string, db string, key string) (value string, found bool, err error)
	SetNX(ctx context.Context, apiKey string, e model.Entry) (written bool, err error)
	Incr(ctx context.Context, apiKey string, db string, key string, delta int64) (int64, error)
	Delete(ctx context.Context, apiKey string, db string, key string) error

	CreateQueue(ctx context.Context, name string, limit int64) error
	Push(ctx context.Context, name string, value string) error
	PopFIFO(ctx context.Context, name string) (value string, found bool, err error)
	PopLIFO(ctx context.Context, name string) (value string, found bool, err error)
	DeleteQueue(ctx context.Context, name string) error
}
