// Package fakeservice is an in-memory HydraKV used by tests and local benchmarks.
package fakeservice

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/horockey/go-toolbox/options"
	"github.com/puzpuzpuz/xsync/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type Service struct {
	dbs    *xsync.MapOf[string, *database]
	queues *xsync.MapOf[string, *queue]
	calls  atomic.Int64

	authEnabled bool
	now         func() time.Time
	logger      zerolog.Logger
}

type database struct {
	mu      sync.Mutex
	apiKey  string
	entries map[string]entry
}

type entry struct {
	value   string
	expires time.Time
}

type queue struct {
	mu     sync.Mutex
	limit  int64
	values []string
}

func New(opts ...options.Option[serviceParams]) (*Service, error) {
	params := defaultServiceParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	return &Service{
		dbs:         xsync.NewMapOf[*database](),
		queues:      xsync.NewMapOf[*queue](),
		authEnabled: params.authEnabled,
		now:         params.now,
		logger:      params.logger,
	}, nil
}

// Calls reports how many operations reached the service.
func (s *Service) Calls() int64 {
	return s.calls.Load()
}

func (s *Service) AuthEnabled() bool {
	return s.authEnabled
}

// CreateDB returns the new db's api key, empty when auth is disabled.
func (s *Service) CreateDB(name string) (string, error) {
	s.calls.Add(1)

	if name == "" {
		return "", fmt.Errorf("%w: empty db name", ErrInvalidArgument)
	}

	db := &database{entries: map[string]entry{}}
	if s.authEnabled {
		db.apiKey = uuid.NewString()
	}

	if _, loaded := s.dbs.LoadOrStore(name, db); loaded {
		return "", fmt.Errorf("%w: %s", ErrDBExists, name)
	}

	s.logger.Debug().Str("db", name).Msg("db created")

	return db.apiKey, nil
}

func (s *Service) DeleteDB(apiKey string, name string) error {
	s.calls.Add(1)

	if _, err := s.authorized(apiKey, name); err != nil {
		return err
	}

	s.dbs.Delete(name)

	s.logger.Debug().Str("db", name).Msg("db deleted")

	return nil
}

func (s *Service) DBExists(name string) bool {
	s.calls.Add(1)

	_, found := s.dbs.Load(name)
	return found
}

func (s *Service) RenewAPIKey(apiKey string, name string) (string, error) {
	s.calls.Add(1)

	if !s.authEnabled {
		return "", ErrAuthDisabled
	}

	db, err := s.authorized(apiKey, name)
	if err != nil {
		return "", err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.apiKey = uuid.NewString()

	return db.apiKey, nil
}

// Set stores value under key. Zero ttl means no expiry.
func (s *Service) Set(apiKey string, dbName string, key string, value string, ttl time.Duration) error {
	s.calls.Add(1)

	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	if ttl < 0 {
		return fmt.Errorf("%w: negative ttl", ErrInvalidArgument)
	}

	db, err := s.authorized(apiKey, dbName)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries[key] = s.newEntry(value, ttl)

	return nil
}

func (s *Service) Get(apiKey string, dbName string, key string) (string, error) {
	s.calls.Add(1)

	db, err := s.authorized(apiKey, dbName)
	if err != nil {
		return "", err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	e, found := s.live(db, key)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return e.value, nil
}

// SetNX fails with ErrKeyExists when key holds a live value.
func (s *Service) SetNX(apiKey string, dbName string, key string, value string, ttl time.Duration) error {
	s.calls.Add(1)

	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	if ttl < 0 {
		return fmt.Errorf("%w: negative ttl", ErrInvalidArgument)
	}

	db, err := s.authorized(apiKey, dbName)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := s.live(db, key); found {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}

	db.entries[key] = s.newEntry(value, ttl)

	return nil
}

// Incr treats a missing key as zero and keeps the entry's expiry.
func (s *Service) Incr(apiKey string, dbName string, key string, delta int64) (int64, error) {
	s.calls.Add(1)

	if key == "" {
		return 0, fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}

	db, err := s.authorized(apiKey, dbName)
	if err != nil {
		return 0, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	e, found := s.live(db, key)

	var cur int64
	if found {
		cur, err = strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotInteger, e.value)
		}
	}

	if (delta > 0 && cur > math.MaxInt64-delta) || (delta < 0 && cur < math.MinInt64-delta) {
		return 0, fmt.Errorf("%w: increment overflows int64", ErrInvalidArgument)
	}

	e.value = strconv.FormatInt(cur+delta, 10)
	db.entries[key] = e

	return cur + delta, nil
}

func (s *Service) Delete(apiKey string, dbName string, key string) error {
	s.calls.Add(1)

	db, err := s.authorized(apiKey, dbName)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := s.live(db, key); !found {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	delete(db.entries, key)

	return nil
}

// Keys lists live keys of a db without auth checks.
func (s *Service) Keys(dbName string) []string {
	db, found := s.dbs.Load(dbName)
	if !found {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	return lo.Filter(lo.Keys(db.entries), func(key string, _ int) bool {
		_, live := s.live(db, key)
		return live
	})
}

func (s *Service) CreateQueue(name string, limit int64) error {
	s.calls.Add(1)

	if name == "" {
		return fmt.Errorf("%w: empty queue name", ErrInvalidArgument)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}

	if _, loaded := s.queues.LoadOrStore(name, &queue{limit: limit}); loaded {
		return fmt.Errorf("%w: %s", ErrQueueExists, name)
	}

	return nil
}

func (s *Service) Push(name string, value string) error {
	s.calls.Add(1)

	q, found := s.queues.Load(name)
	if !found {
		return fmt.Errorf("%w: %s", ErrQueueNotFound, name)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if int64(len(q.values)) >= q.limit {
		return fmt.Errorf("%w: %s", ErrQueueFull, name)
	}
	q.values = append(q.values, value)

	return nil
}

// PopFront returns the oldest value.
func (s *Service) PopFront(name string) (string, error) {
	return s.pop(name, true)
}

// PopBack returns the newest value.
func (s *Service) PopBack(name string) (string, error) {
	return s.pop(name, false)
}

func (s *Service) DeleteQueue(name string) error {
	s.calls.Add(1)

	if _, found := s.queues.LoadAndDelete(name); !found {
		return fmt.Errorf("%w: %s", ErrQueueNotFound, name)
	}
	return nil
}

func (s *Service) pop(name string, front bool) (string, error) {
	s.calls.Add(1)

	q, found := s.queues.Load(name)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrQueueNotFound, name)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.values) == 0 {
		return "", fmt.Errorf("%w: %s", ErrQueueEmpty, name)
	}

	var val string
	if front {
		val, q.values = q.values[0], q.values[1:]
	} else {
		last := len(q.values) - 1
		val, q.values = q.values[last], q.values[:last]
	}

	return val, nil
}

func (s *Service) authorized(apiKey string, name string) (*database, error) {
	db, found := s.dbs.Load(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrDBNotFound, name)
	}
	if !s.authEnabled {
		return db, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if apiKey == "" || apiKey != db.apiKey {
		return nil, fmt.Errorf("%w for db %s", ErrUnauthorized, name)
	}

	return db, nil
}

func (s *Service) newEntry(value string, ttl time.Duration) entry {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	return e
}

// live drops key if expired. Caller holds db.mu.
func (s *Service) live(db *database, key string) (entry, bool) {
	e, found := db.entries[key]
	if !found {
		return entry{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(db.entries, key)
		return entry{}, false
	}
	return e, true
}
