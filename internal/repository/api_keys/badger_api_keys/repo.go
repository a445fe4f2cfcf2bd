package badger_api_keys

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/hydrakv/internal/repository/api_keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ api_keys.Repository = &badgerAPIKeys{}

const keyPrefix = "api_key/"

type badgerAPIKeys struct {
	db      *badger.DB
	ownsDB  bool
	metrics *metrics
}

// New wraps an already opened db. Closing the repo leaves db open.
func New(db *badger.DB) *badgerAPIKeys {
	return &badgerAPIKeys{
		db:      db,
		metrics: newMetrics(db),
	}
}

// Open opens (or creates) a badger db in dir, owned by the repo.
func Open(dir string, logger zerolog.Logger) (*badgerAPIKeys, error) {
	db, err := badger.Open(
		badger.DefaultOptions(dir).
			WithLogger(badgerLogger{logger: logger.With().Str("scope", "badger").Logger()}),
	)
	if err != nil {
		return nil, fmt.Errorf("opening badger db in %s: %w", dir, err)
	}

	repo := New(db)
	repo.ownsDB = true

	return repo, nil
}

func (repo *badgerAPIKeys) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *badgerAPIKeys) Get(db string) (res string, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())

		switch {
		case resErr == nil:
			repo.metrics.successProcessCnt.Inc()
			repo.metrics.keyHitsCnt.Inc()
		case errors.As(resErr, &api_keys.KeyNotFoundError{}):
			repo.metrics.keyMissesCnt.Inc()
			fallthrough
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(db))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return api_keys.KeyNotFoundError{DB: db}
			}
			return fmt.Errorf("getting item: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			res = string(val)
			return nil
		}); err != nil {
			return fmt.Errorf("getting value: %w", err)
		}

		return nil
	}); err != nil {
		return "", fmt.Errorf("reading from db: %w", err)
	}

	return res, nil
}

func (repo *badgerAPIKeys) Set(db string, apiKey string) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())

		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(dbKey(db), []byte(apiKey)); err != nil {
			return fmt.Errorf("setting item to db: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing upd txn: %w", err)
	}

	return nil
}

func (repo *badgerAPIKeys) Remove(db string) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())

		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(dbKey(db)); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del txn: %w", err)
	}

	return nil
}

func (repo *badgerAPIKeys) GetAll() (res map[string]string, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.requestsCnt.Inc()
		repo.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())

		switch resErr {
		case nil:
			repo.metrics.successProcessCnt.Inc()
		default:
			repo.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	res = map[string]string{}

	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("getting value: %w", err)
			}

			res[string(bytes.TrimPrefix(item.Key(), prefix))] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("performing view txn: %w", err)
	}

	return res, nil
}

func (repo *badgerAPIKeys) Close() error {
	if !repo.ownsDB {
		return nil
	}
	if err := repo.db.Close(); err != nil {
		return fmt.Errorf("closing badger db: %w", err)
	}
	return nil
}

func dbKey(db string) []byte {
	return []byte(keyPrefix + db)
}
