package hydrakv

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/hydrakv/internal/processor"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type Option = options.Option[createClientParams]

// CallOption tunes a single db-scoped call.
type CallOption = processor.CallOption

// Sets custom HTTP port.
// Default is 9191.
func WithHTTPPort(p int) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("port must be in 1..65535, got: %d", p)
		}
		target.httpPort = p
		return nil
	}
}

// Sets custom gRPC port.
// Default is 9292.
func WithGRPCPort(p int) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("port must be in 1..65535, got: %d", p)
		}
		target.grpcPort = p
		return nil
	}
}

// Switches transport to gRPC.
// Default is HTTP.
func WithGRPC() options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.useGRPC = true
		return nil
	}
}

// Enables TLS for either transport.
// Default is plaintext.
func WithHTTPS() options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.https = true
		return nil
	}
}

// Sets PEM root certificate to trust. Implies WithHTTPS.
// Default is system roots.
func WithTrustedCert(path string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if path == "" {
			return errors.New("got empty cert path")
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("checking cert file: %w", err)
		}
		target.trustedCert = path
		target.https = true
		return nil
	}
}

// Sets per-request timeout.
// Default is none: only the caller's context bounds a call.
func WithRequestTimeout(d time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got: %s", d)
		}
		target.requestTimeout = d
		return nil
	}
}

// Sets custom logger.
// Default is console logger to stdout.
func WithLogger(l zerolog.Logger) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.logger = l
		return nil
	}
}

// Seeds the db -> api key mapping. May be passed several times.
func WithAPIKeys(keys map[string]string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if _, found := keys[""]; found {
			return errors.New("got api key for empty db name")
		}
		if lo.Contains(lo.Values(keys), "") {
			return errors.New("got empty api key")
		}
		target.apiKeys = lo.Assign(target.apiKeys, keys)
		return nil
	}
}

// Makes db-scoped calls fail with ErrMissingAPIKey for dbs without a known key.
// CreateDB, Ping and queue calls are not affected.
// Default is to send such calls without a key.
func WithAPIKeyRequired() options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.apiKeyRequired = true
		return nil
	}
}

// Removes the db's api key after a successful DeleteDB.
// Default is to keep it.
func WithPurgeKeyOnDeleteDB() options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.purgeOnDelete = true
		return nil
	}
}

// Keeps api keys in a badger db under dir, so they survive restarts.
// Default is in-memory storage.
func WithBadgerDir(dir string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if dir == "" {
			return errors.New("got empty badger dir")
		}
		target.badgerDir = dir
		return nil
	}
}

// Sets custom api keys storage. Client.Close closes it.
func WithAPIKeysRepo(repo APIKeysRepository) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if repo == nil {
			return errors.New("got nil api keys repo")
		}
		target.keys = repo
		return nil
	}
}

// Sets custom transport. Host, ports, TLS and timeout options are then ignored.
func WithGateway(gw Gateway) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if gw == nil {
			return errors.New("got nil gateway")
		}
		target.gateway = gw
		return nil
	}
}

// Sets api key for a single call instead of the one stored for the db.
// Accepted by Set, Get, SetNX, Incr, Delete, DeleteDB and DBExists.
func WithCallAPIKey(key string) CallOption {
	return processor.WithAPIKey(key)
}
