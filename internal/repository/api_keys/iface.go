package api_keys

import "github.com/horockey/hydrakv/internal/model"

// Repository holds the database name -> API key mapping.
// At most one key is stored per database name.
type Repository interface {
	model.MetricsProvider
	Get(db string) (string, error)
	Set(db string, apiKey string) error
	Remove(db string) error
	// GetAll returns a snapshot detached from the repository.
	GetAll() (map[string]string, error)
	Close() error
}
