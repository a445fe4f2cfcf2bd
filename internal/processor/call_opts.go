package processor

import (
	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/hydrakv/internal/model"
)

type callParams struct {
	apiKey string
}

type CallOption = options.Option[callParams]

// Sets api key for a single call. The stored mapping is left untouched.
// Default is the key stored for the db.
func WithAPIKey(key string) CallOption {
	return func(target *callParams) error {
		if key == "" {
			return model.ErrMissingAPIKey
		}
		target.apiKey = key
		return nil
	}
}
