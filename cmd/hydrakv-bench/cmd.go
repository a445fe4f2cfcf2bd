package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/horockey/hydrakv"
	"github.com/horockey/hydrakv/internal/bench"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/horockey/hydrakv/internal/fakeserver"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "HYDRAKV"

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "hydrakv-bench",
		Short:         "Benchmark a HydraKV service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger zerolog.Logger) *cobra.Command {
	cfg := viper.New()
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run set, get and delete against one database",
		Long: `Creates a database, runs set, get and delete over the same keys
and reports throughput and latency per operation.
Every flag can be set with a HYDRAKV_ prefixed env variable, e.g. HYDRAKV_NUM_OPS.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cfg, logger)
		},
	}

	fl := cmd.Flags()
	fl.String("host", "127.0.0.1", "service host")
	fl.Int("port", 9191, "service http port")      //nolint: mnd
	fl.Int("grpc-port", 9292, "service grpc port") //nolint: mnd
	fl.Bool("grpc", false, "use grpc transport")
	fl.Int("num-ops", 1000, "operations per benchmarked op") //nolint: mnd
	fl.Int("concurrency", 10, "max in-flight operations")    //nolint: mnd
	fl.Float64("rate", 0, "max operations per second, 0 is unlimited")
	fl.Duration("timeout", 0, "per request timeout, 0 is none")
	fl.String("api-key", "", "api key of the bench db, required when it already exists")
	fl.Bool("fake", false, "run against an in-process fake service")
	fl.Bool("verbose", false, "log every failed operation")

	return cmd
}

func run(ctx context.Context, cfg *viper.Viper, logger zerolog.Logger) error {
	if cfg.GetBool("verbose") {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	host := cfg.GetString("host")
	httpPort := cfg.GetInt("port")
	grpcPort := cfg.GetInt("grpc-port")

	if cfg.GetBool("fake") {
		svc, err := fakeservice.New(fakeservice.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("creating fake service: %w", err)
		}
		srv, err := fakeserver.Start(svc, logger)
		if err != nil {
			return fmt.Errorf("starting fake service: %w", err)
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				logger.Error().Err(fmt.Errorf("stopping fake service: %w", err)).Send()
			}
		}()

		host, httpPort, grpcPort = srv.Host, srv.HTTPPort, srv.GRPCPort
		logger.Info().
			Int("http_port", httpPort).
			Int("grpc_port", grpcPort).
			Msg("fake service started")
	}

	opts := []hydrakv.Option{
		hydrakv.WithHTTPPort(httpPort),
		hydrakv.WithGRPCPort(grpcPort),
		hydrakv.WithLogger(logger.Level(zerolog.WarnLevel)),
	}
	if cfg.GetBool("grpc") {
		opts = append(opts, hydrakv.WithGRPC())
	}
	if timeout := cfg.GetDuration("timeout"); timeout > 0 {
		opts = append(opts, hydrakv.WithRequestTimeout(timeout))
	}

	cl, err := hydrakv.NewClient(host, opts...)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer func() {
		if err := cl.Close(); err != nil {
			logger.Error().Err(fmt.Errorf("closing client: %w", err)).Send()
		}
	}()

	if err := cl.Ping(ctx); err != nil {
		return fmt.Errorf("pinging %s: %w", host, err)
	}

	benchOpts := []bench.Option{
		bench.WithNumOps(cfg.GetInt("num-ops")),
		bench.WithConcurrency(cfg.GetInt("concurrency")),
		bench.WithRate(cfg.GetFloat64("rate")),
		bench.WithLogger(logger),
	}
	if key := cfg.GetString("api-key"); key != "" {
		benchOpts = append(benchOpts, bench.WithAPIKey(key))
	}

	runner, err := bench.New(cl, benchOpts...)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	logger.Info().
		Str("transport", cl.Transport().String()).
		Int("num_ops", cfg.GetInt("num-ops")).
		Int("concurrency", cfg.GetInt("concurrency")).
		Msg("running benchmark")

	rep, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	return rep.Print(os.Stdout)
}
