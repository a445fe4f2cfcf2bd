package inmemory_api_keys

import (
	"sync"
	"time"

	"github.com/horockey/hydrakv/internal/repository/api_keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

var _ api_keys.Repository = &inmemoryAPIKeys{}

type inmemoryAPIKeys struct {
	storage map[string]string
	mu      sync.RWMutex
	metrics *metrics
}

func New() *inmemoryAPIKeys {
	repo := inmemoryAPIKeys{
		storage: map[string]string{},
	}

	repo.metrics = newMetrics(&repo)

	return &repo
}

func (repo *inmemoryAPIKeys) Get(db string) (_ string, resErr error) {
	defer repo.observe(repo.metrics.getRequestsCnt, time.Now(), &resErr)

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	key, found := repo.storage[db]
	if !found {
		return "", api_keys.KeyNotFoundError{DB: db}
	}

	return key, nil
}

func (repo *inmemoryAPIKeys) Set(db string, apiKey string) (resErr error) {
	defer repo.observe(repo.metrics.setRequestsCnt, time.Now(), &resErr)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.storage[db] = apiKey
	return nil
}

func (repo *inmemoryAPIKeys) Remove(db string) (resErr error) {
	defer repo.observe(repo.metrics.delRequestsCnt, time.Now(), &resErr)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.storage, db)
	return nil
}

func (repo *inmemoryAPIKeys) GetAll() (_ map[string]string, resErr error) {
	defer repo.observe(repo.metrics.getRequestsCnt, time.Now(), &resErr)

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return lo.Assign(repo.storage), nil
}

func (repo *inmemoryAPIKeys) Close() error {
	return nil
}

func (repo *inmemoryAPIKeys) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *inmemoryAPIKeys) observe(cnt prometheus.Counter, ts time.Time, resErr *error) {
	cnt.Inc()
	repo.metrics.handleTimeHist.Observe(time.Since(ts).Seconds())
	switch *resErr {
	case nil:
		repo.metrics.successProcessCnt.Inc()
	default:
		repo.metrics.errProcessCnt.Inc()
	}
}

func (repo *inmemoryAPIKeys) size() int {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return len(repo.storage)
}
