package hydrakv

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/hydrakv/internal/gateway/remote_store/grpc_remote_store"
	"github.com/horockey/hydrakv/internal/gateway/remote_store/http_remote_store"
	"github.com/horockey/hydrakv/internal/processor"
	"github.com/horockey/hydrakv/internal/repository/api_keys"
	"github.com/horockey/hydrakv/internal/repository/api_keys/badger_api_keys"
	"github.com/horockey/hydrakv/internal/repository/api_keys/inmemory_api_keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultAPIKeysFile is the conventional name for GetAPIKeysAsJSON output.
const DefaultAPIKeysFile = "api_keys.json"

// Client talks to a HydraKV service over the transport chosen at construction.
// It is safe for concurrent use.
type Client struct {
	*processor.Processor
	gateway Gateway
	keys    APIKeysRepository
}

type createClientParams struct {
	httpPort       int
	grpcPort       int
	useGRPC        bool
	https          bool
	trustedCert    string
	requestTimeout time.Duration
	logger         zerolog.Logger
	apiKeys        map[string]string
	apiKeyRequired bool
	purgeOnDelete  bool
	badgerDir      string

	keys    APIKeysRepository
	gateway Gateway
}

func defaultCreateClientParams() createClientParams {
	return createClientParams{
		httpPort: 9191, //nolint: mnd
		grpcPort: 9292, //nolint: mnd
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "hydrakv_client").
			Logger(),
	}
}

// NewClient builds a client for the service on host. No network call is made;
// use Ping to check connectivity.
func NewClient(host string, opts ...options.Option[createClientParams]) (*Client, error) {
	params := defaultCreateClientParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	if host == "" && params.gateway == nil {
		return nil, errors.New("got empty host")
	}
	if params.keys != nil && params.badgerDir != "" {
		return nil, errors.New("api keys repo and badger dir are mutually exclusive")
	}

	keys, err := newAPIKeysRepo(params)
	if err != nil {
		return nil, err
	}

	if len(params.apiKeys) > 0 {
		if err := api_keys.Import(keys, params.apiKeys); err != nil {
			_ = keys.Close()
			return nil, fmt.Errorf("storing initial api keys: %w", err)
		}
	}

	gw, err := newGateway(host, params)
	if err != nil {
		_ = keys.Close()
		return nil, err
	}

	proc := processor.New(
		gw,
		keys,
		params.apiKeyRequired,
		params.purgeOnDelete,
		params.logger,
	)

	return &Client{
		Processor: proc,
		gateway:   gw,
		keys:      keys,
	}, nil
}

func newAPIKeysRepo(params createClientParams) (APIKeysRepository, error) {
	switch {
	case params.keys != nil:
		return params.keys, nil
	case params.badgerDir != "":
		repo, err := badger_api_keys.Open(
			params.badgerDir,
			params.logger.With().Str("scope", "badger_api_keys").Logger(),
		)
		if err != nil {
			return nil, fmt.Errorf("opening api keys store: %w", err)
		}
		return repo, nil
	default:
		return inmemory_api_keys.New(), nil
	}
}

// newGateway always builds the http gateway: in grpc mode it still carries
// the calls KVService does not expose.
func newGateway(host string, params createClientParams) (Gateway, error) {
	if params.gateway != nil {
		return params.gateway, nil
	}

	httpGW, err := http_remote_store.New(
		host,
		params.httpPort,
		params.https,
		params.trustedCert,
		params.requestTimeout,
		params.logger.With().Str("scope", "http_remote_store").Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http gateway: %w", err)
	}

	if !params.useGRPC {
		return httpGW, nil
	}

	gw, err := grpc_remote_store.New(
		host,
		params.grpcPort,
		httpGW,
		params.https,
		params.trustedCert,
		params.requestTimeout,
		params.logger.With().Str("scope", "grpc_remote_store").Logger(),
	)
	if err != nil {
		_ = httpGW.Close()
		return nil, fmt.Errorf("creating grpc gateway: %w", err)
	}
	return gw, nil
}

func (cl *Client) Metrics() []prometheus.Collector {
	return slices.Concat(
		cl.Processor.Metrics(),
		cl.gateway.Metrics(),
		cl.keys.Metrics(),
	)
}
