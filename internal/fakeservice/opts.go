package fakeservice

import (
	"errors"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/rs/zerolog"
)

type serviceParams struct {
	authEnabled bool
	now         func() time.Time
	logger      zerolog.Logger
}

func defaultServiceParams() serviceParams {
	return serviceParams{
		authEnabled: true,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
}

// Disables api key checks. Renewal then fails with ErrAuthDisabled.
// Default is enabled.
func WithAuthDisabled() options.Option[serviceParams] {
	return func(target *serviceParams) error {
		target.authEnabled = false
		return nil
	}
}

// Sets clock used for TTL expiry.
// Default is time.Now.
func WithClock(now func() time.Time) options.Option[serviceParams] {
	return func(target *serviceParams) error {
		if now == nil {
			return errors.New("got nil clock")
		}
		target.now = now
		return nil
	}
}

// Sets custom logger.
// Default is zerolog.Nop.
func WithLogger(l zerolog.Logger) options.Option[serviceParams] {
	return func(target *serviceParams) error {
		target.logger = l
		return nil
	}
}

type Option = options.Option[serviceParams]
