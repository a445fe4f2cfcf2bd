package bench

import (
	"errors"
	"fmt"

	"github.com/horockey/go-toolbox/options"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Option = options.Option[runnerParams]

type runnerParams struct {
	numOps      int
	concurrency int64
	rate        rate.Limit
	dbName      string
	apiKey      string
	logger      zerolog.Logger
}

func defaultRunnerParams() runnerParams {
	return runnerParams{
		numOps:      1000, //nolint: mnd
		concurrency: 10,   //nolint: mnd
		rate:        rate.Inf,
		dbName:      "benchdb",
		logger:      zerolog.Nop(),
	}
}

// Sets number of operations per benchmarked op.
// Default is 1000.
func WithNumOps(n int) Option {
	return func(target *runnerParams) error {
		if n <= 0 {
			return fmt.Errorf("got non-positive num ops: %d", n)
		}
		target.numOps = n
		return nil
	}
}

// Sets max number of in-flight operations.
// Default is 10.
func WithConcurrency(n int) Option {
	return func(target *runnerParams) error {
		if n <= 0 {
			return fmt.Errorf("got non-positive concurrency: %d", n)
		}
		target.concurrency = int64(n)
		return nil
	}
}

// Sets limit of operations per second. Zero means unlimited.
// Default is unlimited.
func WithRate(opsPerSec float64) Option {
	return func(target *runnerParams) error {
		if opsPerSec < 0 {
			return fmt.Errorf("got negative rate: %f", opsPerSec)
		}
		if opsPerSec == 0 {
			target.rate = rate.Inf
			return nil
		}
		target.rate = rate.Limit(opsPerSec)
		return nil
	}
}

// Sets name of database created for the run.
// Default is "benchdb".
func WithDBName(name string) Option {
	return func(target *runnerParams) error {
		if name == "" {
			return errors.New("got empty db name")
		}
		target.dbName = name
		return nil
	}
}

// Sets api key used when the bench db already exists.
// Default is none: an existing db fails the run.
func WithAPIKey(key string) Option {
	return func(target *runnerParams) error {
		if key == "" {
			return errors.New("got empty api key")
		}
		target.apiKey = key
		return nil
	}
}

// Sets logger.
// Default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(target *runnerParams) error {
		target.logger = l
		return nil
	}
}
