// Package bench measures throughput and latency of set, get and delete
// against a HydraKV service.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/hydrakv/internal/model"
	"github.com/horockey/hydrakv/internal/processor"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	OpSet    = "set"
	OpGet    = "get"
	OpDelete = "delete"
)

// Store is the part of the client the runner drives.
type Store interface {
	CreateDB(ctx context.Context, name string) (string, error)
	DeleteDB(ctx context.Context, name string, opts ...processor.CallOption) error
	Set(
		ctx context.Context,
		db string,
		key string,
		value string,
		ttl time.Duration,
		opts ...processor.CallOption,
	) error
	Get(ctx context.Context, db string, key string, opts ...processor.CallOption) (string, bool, error)
	Delete(ctx context.Context, db string, key string, opts ...processor.CallOption) error
}

type Runner struct {
	store  Store
	params runnerParams
}

type Result struct {
	Op         string
	Ops        int
	Errors     int64
	Total      time.Duration
	Throughput float64
	Mean       time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
}

type Report struct {
	Results []Result
}

func New(store Store, opts ...Option) (*Runner, error) {
	if store == nil {
		return nil, errors.New("got nil store")
	}

	params := defaultRunnerParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	return &Runner{
		store:  store,
		params: params,
	}, nil
}

// Run creates the bench db, runs set, get and delete over the same keys
// in that order, then drops the db. An existing db is reused only when
// an api key for it is given.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	db := r.params.dbName

	var callOpts []processor.CallOption
	if _, err := r.store.CreateDB(ctx, db); err != nil {
		switch {
		case !errors.Is(err, model.ErrConflict):
			return Report{}, fmt.Errorf("creating db %s: %w", db, err)
		case r.params.apiKey == "":
			return Report{}, fmt.Errorf("db %s already exists, api key required to reuse it: %w", db, err)
		}
		callOpts = append(callOpts, processor.WithAPIKey(r.params.apiKey))
		r.params.logger.Warn().Str("db", db).Msg("db already exists, reusing it")
	}
	defer func() {
		if err := r.store.DeleteDB(context.WithoutCancel(ctx), db, callOpts...); err != nil {
			r.params.logger.Error().Err(fmt.Errorf("deleting db %s: %w", db, err)).Send()
		}
	}()

	ops := []struct {
		name string
		fn   func(ctx context.Context, idx int) error
	}{
		{OpSet, func(ctx context.Context, idx int) error {
			return r.store.Set(ctx, db, benchKey(idx), benchValue(idx), 0, callOpts...)
		}},
		{OpGet, func(ctx context.Context, idx int) error {
			_, _, err := r.store.Get(ctx, db, benchKey(idx), callOpts...)
			return err
		}},
		{OpDelete, func(ctx context.Context, idx int) error {
			return r.store.Delete(ctx, db, benchKey(idx), callOpts...)
		}},
	}

	rep := Report{Results: make([]Result, 0, len(ops))}
	for _, op := range ops {
		res, err := r.runOp(ctx, op.name, op.fn)
		if err != nil {
			return rep, fmt.Errorf("running %s: %w", op.name, err)
		}
		r.params.logger.Info().
			Str("op", res.Op).
			Dur("total", res.Total).
			Float64("throughput", res.Throughput).
			Dur("mean", res.Mean).
			Int64("errors", res.Errors).
			Msg("op finished")
		rep.Results = append(rep.Results, res)
	}

	return rep, nil
}

func (r *Runner) runOp(
	ctx context.Context,
	name string,
	fn func(ctx context.Context, idx int) error,
) (Result, error) {
	sem := semaphore.NewWeighted(r.params.concurrency)
	limiter := rate.NewLimiter(r.params.rate, 1)

	latencies := make([]float64, r.params.numOps)
	var errCount atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	launched := 0
	var launchErr error
	for idx := range r.params.numOps {
		if err := limiter.Wait(ctx); err != nil {
			launchErr = err
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			launchErr = err
			break
		}
		launched++

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			ts := time.Now()
			if err := fn(ctx, idx); err != nil {
				errCount.Add(1)
				r.params.logger.Debug().Err(fmt.Errorf("%s %s: %w", name, benchKey(idx), err)).Send()
			}
			latencies[idx] = float64(time.Since(ts))
		}()
	}
	wg.Wait()
	total := time.Since(start)

	if launchErr != nil {
		return Result{}, launchErr
	}

	return summarize(name, latencies[:launched], errCount.Load(), total)
}

func summarize(name string, latencies []float64, errCount int64, total time.Duration) (Result, error) {
	res := Result{
		Op:     name,
		Ops:    len(latencies),
		Errors: errCount,
		Total:  total,
	}
	if len(latencies) == 0 {
		return res, nil
	}
	if total > 0 {
		res.Throughput = float64(len(latencies)) / total.Seconds()
	}

	mean, err := stats.Mean(latencies)
	if err != nil {
		return Result{}, fmt.Errorf("calculating mean: %w", err)
	}
	res.Mean = time.Duration(mean)

	for _, p := range []struct {
		percent float64
		target  *time.Duration
	}{
		{50, &res.P50},
		{95, &res.P95},
		{99, &res.P99},
	} {
		val, err := stats.Percentile(latencies, p.percent)
		if err != nil {
			return Result{}, fmt.Errorf("calculating p%.0f: %w", p.percent, err)
		}
		*p.target = time.Duration(val)
	}

	return res, nil
}

// Print writes the report as an aligned table.
func (rep Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint: mnd
	fmt.Fprintln(tw, "OP\tOPS\tERRORS\tTOTAL\tOPS/S\tMEAN\tP50\tP95\tP99")
	for _, res := range rep.Results {
		fmt.Fprintf(
			tw,
			"%s\t%d\t%d\t%s\t%.2f\t%s\t%s\t%s\t%s\n",
			res.Op,
			res.Ops,
			res.Errors,
			res.Total.Round(time.Microsecond),
			res.Throughput,
			res.Mean.Round(time.Microsecond),
			res.P50.Round(time.Microsecond),
			res.P95.Round(time.Microsecond),
			res.P99.Round(time.Microsecond),
		)
	}
	return tw.Flush()
}

func benchKey(idx int) string {
	return "k" + strconv.Itoa(idx)
}

func benchValue(idx int) string {
	return "v" + strconv.Itoa(idx)
}
