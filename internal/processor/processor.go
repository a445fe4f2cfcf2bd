package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/hydrakv/internal/gateway/remote_store"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/horockey/hydrakv/internal/repository/api_keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Processor validates calls, attaches api keys and dispatches to the gateway.
// It is safe for concurrent use.
type Processor struct {
	gateway        remote_store.Gateway
	keys           api_keys.Repository
	apiKeyRequired bool
	purgeOnDelete  bool
	Logger         zerolog.Logger
	metrics        *metrics
}

func New(
	gateway remote_store.Gateway,
	keys api_keys.Repository,
	apiKeyRequired bool,
	purgeOnDelete bool,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		gateway:        gateway,
		keys:           keys,
		apiKeyRequired: apiKeyRequired,
		purgeOnDelete:  purgeOnDelete,
		Logger:         logger,
		metrics:        newMetrics(),
	}
}

func (pr *Processor) Metrics() []prometheus.Collector {
	return pr.metrics.list()
}

func (pr *Processor) Transport() model.Transport {
	return pr.gateway.Transport()
}

// CreateDB creates a db and remembers the returned api key.
// An empty key means the service runs without api key auth.
func (pr *Processor) CreateDB(ctx context.Context, name string) (_ string, resErr error) {
	const op = "create_db"
	defer pr.observe(op, time.Now(), &resErr)

	if err := checkDBName(op, name); err != nil {
		return "", err
	}

	key, err := pr.gateway.CreateDB(ctx, name)
	if err != nil {
		return "", err
	}

	if key != "" {
		if err := pr.keys.Set(name, key); err != nil {
			return key, fmt.Errorf("storing api key for %s: %w", name, err)
		}
	}

	pr.Logger.Debug().Str("db", name).Bool("keyed", key != "").Msg("db created")

	return key, nil
}

// DeleteDB succeeds for a missing db. The api key is kept unless purging is enabled.
func (pr *Processor) DeleteDB(ctx context.Context, name string, opts ...CallOption) (resErr error) {
	const op = "delete_db"
	defer pr.observe(op, time.Now(), &resErr)

	if err := checkDBName(op, name); err != nil {
		return err
	}

	key, err := pr.apiKey(op, name, opts)
	if err != nil {
		return err
	}

	if err := pr.gateway.DeleteDB(ctx, key, name); err != nil {
		return err
	}

	if pr.purgeOnDelete {
		if err := pr.keys.Remove(name); err != nil {
			return fmt.Errorf("removing api key for %s: %w", name, err)
		}
	}

	return nil
}

func (pr *Processor) DBExists(ctx context.Context, name string, opts ...CallOption) (_ bool, resErr error) {
	const op = "db_exists"
	defer pr.observe(op, time.Now(), &resErr)

	if err := checkDBName(op, name); err != nil {
		return false, err
	}

	key, err := pr.apiKey(op, name, opts)
	if err != nil {
		return false, err
	}

	return pr.gateway.DBExists(ctx, key, name)
}

// Ping checks the service answers an existence query for a random db.
func (pr *Processor) Ping(ctx context.Context) (resErr error) {
	const op = "ping"
	defer pr.observe(op, time.Now(), &resErr)

	if _, err := pr.gateway.DBExists(ctx, "", "ping-"+uuid.NewString()); err != nil {
		return err
	}
	return nil
}

// RenewAPIKeyForDB rotates the key on the service and then replaces the stored one.
func (pr *Processor) RenewAPIKeyForDB(ctx context.Context, name string) (_ string, resErr error) {
	const op = "renew_api_key"
	defer pr.observe(op, time.Now(), &resErr)

	if err := checkDBName(op, name); err != nil {
		return "", err
	}

	key, err := pr.apiKey(op, name, nil)
	if err != nil {
		return "", err
	}

	newKey, err := pr.gateway.RenewAPIKey(ctx, key, name)
	if err != nil {
		return "", err
	}

	if err := pr.keys.Set(name, newKey); err != nil {
		return newKey, fmt.Errorf("storing api key for %s: %w", name, err)
	}

	pr.Logger.Debug().Str("db", name).Msg("api key renewed")

	return newKey, nil
}

func (pr *Processor) Set(
	ctx context.Context,
	db string,
	key string,
	value string,
	ttl time.Duration,
	opts ...CallOption,
) (resErr error) {
	const op = "set"
	defer pr.observe(op, time.Now(), &resErr)

	e := model.Entry{DB: db, Key: key, Value: value, TTL: ttl}
	apiKey, err := pr.prepareEntry(op, e, opts)
	if err != nil {
		return err
	}

	return pr.gateway.Set(ctx, apiKey, e)
}

// Get reports a missing key (or db) with found == false and nil error.
func (pr *Processor) Get(
	ctx context.Context,
	db string,
	key string,
	opts ...CallOption,
) (_ string, _ bool, resErr error) {
	const op = "get"
	defer pr.observe(op, time.Now(), &resErr)

	apiKey, err := pr.prepareKey(op, db, key, opts)
	if err != nil {
		return "", false, err
	}

	return pr.gateway.Get(ctx, apiKey, db, key)
}

func (pr *Processor) SetNX(
	ctx context.Context,
	db string,
	key string,
	value string,
	ttl time.Duration,
	opts ...CallOption,
) (_ bool, resErr error) {
	const op = "setnx"
	defer pr.observe(op, time.Now(), &resErr)

	e := model.Entry{DB: db, Key: key, Value: value, TTL: ttl}
	apiKey, err := pr.prepareEntry(op, e, opts)
	if err != nil {
		return false, err
	}

	return pr.gateway.SetNX(ctx, apiKey, e)
}

func (pr *Processor) Incr(
	ctx context.Context,
	db string,
	key string,
	delta int64,
	opts ...CallOption,
) (_ int64, resErr error) {
	const op = "incr"
	defer pr.observe(op, time.Now(), &resErr)

	apiKey, err := pr.prepareKey(op, db, key, opts)
	if err != nil {
		return 0, err
	}

	return pr.gateway.Incr(ctx, apiKey, db, key, delta)
}

// Delete succeeds for a missing key.
func (pr *Processor) Delete(ctx context.Context, db string, key string, opts ...CallOption) (resErr error) {
	const op = "delete"
	defer pr.observe(op, time.Now(), &resErr)

	apiKey, err := pr.prepareKey(op, db, key, opts)
	if err != nil {
		return err
	}

	return pr.gateway.Delete(ctx, apiKey, db, key)
}

func (pr *Processor) GetAPIKeyForDB(name string) (string, bool) {
	key, err := pr.keys.Get(name)
	switch {
	case err == nil:
		return key, true
	case errors.As(err, &api_keys.KeyNotFoundError{}):
		return "", false
	default:
		pr.Logger.Error().Err(fmt.Errorf("getting api key for %s: %w", name, err)).Send()
		return "", false
	}
}

func (pr *Processor) SetAPIKeyForDB(name string, key string) error {
	const op = "set_api_key"

	switch {
	case name == "":
		return precondition(op, model.ErrEmptyDBName)
	case key == "":
		return precondition(op, model.ErrMissingAPIKey)
	}

	if err := pr.keys.Set(name, key); err != nil {
		return fmt.Errorf("storing api key for %s: %w", name, err)
	}
	return nil
}

// APIKeys returns a snapshot of the whole mapping.
func (pr *Processor) APIKeys() (map[string]string, error) {
	keys, err := pr.keys.GetAll()
	if err != nil {
		return nil, fmt.Errorf("getting api keys: %w", err)
	}
	return keys, nil
}

// GetAPIKeysAsJSON overwrites path with the whole mapping.
func (pr *Processor) GetAPIKeysAsJSON(path string) error {
	keys, err := pr.APIKeys()
	if err != nil {
		return err
	}

	if err := api_keys.WriteJSONFile(path, keys); err != nil {
		pr.Logger.Error().Err(fmt.Errorf("exporting api keys: %w", err)).Send()
		return err
	}

	pr.Logger.Debug().Str("path", path).Int("count", len(keys)).Msg("api keys exported")

	return nil
}

// LoadAPIKeysJSON merges a previously exported file, replacing entries for the same dbs.
func (pr *Processor) LoadAPIKeysJSON(path string) error {
	keys, err := api_keys.ReadJSONFile(path)
	if err != nil {
		return err
	}

	if err := api_keys.Import(pr.keys, keys); err != nil {
		return fmt.Errorf("importing api keys: %w", err)
	}

	pr.Logger.Debug().Str("path", path).Int("count", len(keys)).Msg("api keys imported")

	return nil
}

func (pr *Processor) CreateQueue(ctx context.Context, name string, limit int64) (resErr error) {
	const op = "queue_create"
	defer pr.observe(op, time.Now(), &resErr)

	switch {
	case name == "":
		return precondition(op, model.ErrEmptyQueueName)
	case limit <= 0:
		return precondition(op, model.ErrInvalidLimit)
	}

	return pr.gateway.CreateQueue(ctx, name, limit)
}

func (pr *Processor) Push(ctx context.Context, name string, value string) (resErr error) {
	const op = "queue_push"
	defer pr.observe(op, time.Now(), &resErr)

	if name == "" {
		return precondition(op, model.ErrEmptyQueueName)
	}

	return pr.gateway.Push(ctx, name, value)
}

// PopFIFO takes the oldest value. An empty or missing queue gives found == false.
func (pr *Processor) PopFIFO(ctx context.Context, name string) (_ string, _ bool, resErr error) {
	const op = "fifo_pop"
	defer pr.observe(op, time.Now(), &resErr)

	if name == "" {
		return "", false, precondition(op, model.ErrEmptyQueueName)
	}

	return pr.gateway.PopFIFO(ctx, name)
}

// PopLIFO takes the newest value. An empty or missing queue gives found == false.
func (pr *Processor) PopLIFO(ctx context.Context, name string) (_ string, _ bool, resErr error) {
	const op = "lifo_pop"
	defer pr.observe(op, time.Now(), &resErr)

	if name == "" {
		return "", false, precondition(op, model.ErrEmptyQueueName)
	}

	return pr.gateway.PopLIFO(ctx, name)
}

func (pr *Processor) DeleteQueue(ctx context.Context, name string) (resErr error) {
	const op = "queue_delete"
	defer pr.observe(op, time.Now(), &resErr)

	if name == "" {
		return precondition(op, model.ErrEmptyQueueName)
	}

	return pr.gateway.DeleteQueue(ctx, name)
}

func (pr *Processor) Close() error {
	var resErr error
	if err := pr.gateway.Close(); err != nil {
		resErr = errors.Join(resErr, fmt.Errorf("closing gateway: %w", err))
	}
	if err := pr.keys.Close(); err != nil {
		resErr = errors.Join(resErr, fmt.Errorf("closing api keys repo: %w", err))
	}
	return resErr
}

func (pr *Processor) prepareKey(op string, db string, key string, opts []CallOption) (string, error) {
	if err := checkDBName(op, db); err != nil {
		return "", err
	}
	if key == "" {
		return "", precondition(op, model.ErrEmptyKey)
	}
	return pr.apiKey(op, db, opts)
}

func (pr *Processor) prepareEntry(op string, e model.Entry, opts []CallOption) (string, error) {
	if e.TTL < 0 || e.TTL%time.Second != 0 {
		return "", precondition(op, model.ErrInvalidTTL)
	}
	return pr.prepareKey(op, e.DB, e.Key, opts)
}

// apiKey prefers a per-call key, then the stored one.
// Returns "" for unknown dbs unless keys are required.
func (pr *Processor) apiKey(op string, db string, opts []CallOption) (string, error) {
	params := callParams{}
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return "", precondition(op, fmt.Errorf("applying call opts: %w", err))
	}
	if params.apiKey != "" {
		return params.apiKey, nil
	}

	key, err := pr.keys.Get(db)
	switch {
	case err == nil:
		return key, nil
	case errors.As(err, &api_keys.KeyNotFoundError{}):
		if pr.apiKeyRequired {
			return "", precondition(op, model.ErrMissingAPIKey)
		}
		return "", nil
	default:
		return "", fmt.Errorf("getting api key for %s: %w", db, err)
	}
}

func (pr *Processor) observe(op string, ts time.Time, resErr *error) {
	pr.metrics.handleTimeHist.WithLabelValues(op).Observe(time.Since(ts).Seconds())

	err := *resErr
	var pe *model.PreconditionError
	switch {
	case err == nil:
		pr.metrics.successProcessCnt.WithLabelValues(op).Inc()
	case errors.As(err, &pe):
		pr.metrics.preconditionFailsCnt.WithLabelValues(op).Inc()
		pr.Logger.Debug().Err(err).Str("op", op).Msg("call rejected")
	default:
		pr.metrics.errProcessCnt.WithLabelValues(op).Inc()
		pr.Logger.Error().Err(fmt.Errorf("%s via %s: %w", op, pr.gateway.Transport(), err)).Send()
	}
}

// checkDBName rejects names that cannot travel as a single url path segment.
func checkDBName(op string, db string) error {
	switch {
	case db == "":
		return precondition(op, model.ErrEmptyDBName)
	case db == ".", db == "..", strings.Contains(db, "/"):
		return precondition(op, model.ErrInvalidDBName)
	}
	return nil
}

func precondition(op string, err error) error {
	return &model.PreconditionError{Op: op, Err: err}
}
