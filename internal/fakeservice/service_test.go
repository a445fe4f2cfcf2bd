package fakeservice_test

import (
	"sync"
	"testing"
	"time"

	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newService(t *testing.T, opts ...fakeservice.Option) *fakeservice.Service {
	t.Helper()
	s, err := fakeservice.New(opts...)
	require.NoError(t, err)
	return s
}

func Test_CreateDB(t *testing.T) {
	s := newService(t)

	key, err := s.CreateDB("users")
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.True(t, s.DBExists("users"))

	_, err = s.CreateDB("users")
	assert.ErrorIs(t, err, fakeservice.ErrDBExists)

	_, err = s.CreateDB("")
	assert.ErrorIs(t, err, fakeservice.ErrInvalidArgument)
}

func Test_Auth(t *testing.T) {
	s := newService(t)

	key, err := s.CreateDB("users")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Set("", "users", "k", "v", 0), fakeservice.ErrUnauthorized)
	assert.ErrorIs(t, s.Set("wrong", "users", "k", "v", 0), fakeservice.ErrUnauthorized)
	assert.NoError(t, s.Set(key, "users", "k", "v", 0))

	assert.ErrorIs(t, s.Set(key, "missing", "k", "v", 0), fakeservice.ErrDBNotFound)
}

func Test_AuthDisabled(t *testing.T) {
	s := newService(t, fakeservice.WithAuthDisabled())

	key, err := s.CreateDB("users")
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, s.Set("", "users", "k", "v", 0))

	_, err = s.RenewAPIKey("", "users")
	assert.ErrorIs(t, err, fakeservice.ErrAuthDisabled)
}

func Test_RenewAPIKey(t *testing.T) {
	s := newService(t)

	oldKey, err := s.CreateDB("users")
	require.NoError(t, err)

	newKey, err := s.RenewAPIKey(oldKey, "users")
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, newKey)

	_, err = s.Get(oldKey, "users", "k")
	assert.ErrorIs(t, err, fakeservice.ErrUnauthorized)

	_, err = s.Get(newKey, "users", "k")
	assert.ErrorIs(t, err, fakeservice.ErrKeyNotFound)
}

func Test_SetGetDelete(t *testing.T) {
	s := newService(t)
	key, err := s.CreateDB("users")
	require.NoError(t, err)

	require.NoError(t, s.Set(key, "users", "alice", "1", 0))
	require.NoError(t, s.Set(key, "users", "alice", "2", 0))

	val, err := s.Get(key, "users", "alice")
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	require.NoError(t, s.Delete(key, "users", "alice"))
	assert.ErrorIs(t, s.Delete(key, "users", "alice"), fakeservice.ErrKeyNotFound)

	_, err = s.Get(key, "users", "alice")
	assert.ErrorIs(t, err, fakeservice.ErrKeyNotFound)
}

func Test_TTL(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	s := newService(t, fakeservice.WithClock(c.Now))
	key, err := s.CreateDB("sessions")
	require.NoError(t, err)

	require.NoError(t, s.Set(key, "sessions", "tok", "x", 2*time.Second))

	c.Advance(time.Second)
	val, err := s.Get(key, "sessions", "tok")
	require.NoError(t, err)
	assert.Equal(t, "x", val)

	c.Advance(time.Second)
	_, err = s.Get(key, "sessions", "tok")
	assert.ErrorIs(t, err, fakeservice.ErrKeyNotFound)
	assert.Empty(t, s.Keys("sessions"))

	assert.ErrorIs(t, s.Set(key, "sessions", "tok", "x", -time.Second), fakeservice.ErrInvalidArgument)
}

func Test_SetNX(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	s := newService(t, fakeservice.WithClock(c.Now))
	key, err := s.CreateDB("locks")
	require.NoError(t, err)

	require.NoError(t, s.SetNX(key, "locks", "job", "w1", time.Second))
	assert.ErrorIs(t, s.SetNX(key, "locks", "job", "w2", 0), fakeservice.ErrKeyExists)

	val, err := s.Get(key, "locks", "job")
	require.NoError(t, err)
	assert.Equal(t, "w1", val)

	c.Advance(time.Second)
	assert.NoError(t, s.SetNX(key, "locks", "job", "w2", 0))
}

func Test_SetNX_Concurrent(t *testing.T) {
	s := newService(t)
	key, err := s.CreateDB("locks")
	require.NoError(t, err)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.SetNX(key, "locks", "job", "w", 0) == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}

func Test_Incr(t *testing.T) {
	s := newService(t)
	key, err := s.CreateDB("counters")
	require.NoError(t, err)

	v, err := s.Incr(key, "counters", "hits", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = s.Incr(key, "counters", "hits", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	v, err = s.Incr(key, "counters", "hits", -10)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), v)

	require.NoError(t, s.Set(key, "counters", "name", "bob", 0))
	_, err = s.Incr(key, "counters", "name", 1)
	assert.ErrorIs(t, err, fakeservice.ErrNotInteger)
}

func Test_DeleteDB(t *testing.T) {
	s := newService(t)
	key, err := s.CreateDB("tmp")
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteDB("wrong", "tmp"), fakeservice.ErrUnauthorized)
	require.NoError(t, s.DeleteDB(key, "tmp"))
	assert.False(t, s.DBExists("tmp"))
	assert.ErrorIs(t, s.DeleteDB(key, "tmp"), fakeservice.ErrDBNotFound)
}

func Test_Queues(t *testing.T) {
	s := newService(t)

	require.NoError(t, s.CreateQueue("jobs", 2))
	assert.ErrorIs(t, s.CreateQueue("jobs", 2), fakeservice.ErrQueueExists)
	assert.ErrorIs(t, s.CreateQueue("other", 0), fakeservice.ErrInvalidArgument)

	require.NoError(t, s.Push("jobs", "a"))
	require.NoError(t, s.Push("jobs", "b"))
	assert.ErrorIs(t, s.Push("jobs", "c"), fakeservice.ErrQueueFull)

	val, err := s.PopBack("jobs")
	require.NoError(t, err)
	assert.Equal(t, "b", val)

	require.NoError(t, s.Push("jobs", "c"))

	val, err = s.PopFront("jobs")
	require.NoError(t, err)
	assert.Equal(t, "a", val)

	val, err = s.PopFront("jobs")
	require.NoError(t, err)
	assert.Equal(t, "c", val)

	_, err = s.PopFront("jobs")
	assert.ErrorIs(t, err, fakeservice.ErrQueueEmpty)

	require.NoError(t, s.DeleteQueue("jobs"))
	assert.ErrorIs(t, s.DeleteQueue("jobs"), fakeservice.ErrQueueNotFound)
	assert.ErrorIs(t, s.Push("jobs", "x"), fakeservice.ErrQueueNotFound)
}

func Test_Calls(t *testing.T) {
	s := newService(t)

	_, _ = s.CreateDB("a")
	_ = s.DBExists("a")
	_ = s.Keys("a")

	assert.Equal(t, int64(2), s.Calls())
}
