// Package fakeserver runs the fake HydraKV service over HTTP and gRPC on loopback listeners.
package fakeserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/horockey/hydrakv/internal/controller/grpc_controller"
	"github.com/horockey/hydrakv/internal/controller/http_controller"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/rs/zerolog"
)

const Host = "127.0.0.1"

type Server struct {
	Service  *fakeservice.Service
	Host     string
	HTTPPort int
	GRPCPort int

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   error
}

// Start serves svc over HTTP and gRPC on random loopback ports until Stop.
func Start(svc *fakeservice.Service, logger zerolog.Logger) (*Server, error) {
	httpL, err := net.Listen("tcp", net.JoinHostPort(Host, "0"))
	if err != nil {
		return nil, fmt.Errorf("listening http: %w", err)
	}
	grpcL, err := net.Listen("tcp", net.JoinHostPort(Host, "0"))
	if err != nil {
		_ = httpL.Close()
		return nil, fmt.Errorf("listening grpc: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		Service:  svc,
		Host:     Host,
		HTTPPort: httpL.Addr().(*net.TCPAddr).Port,
		GRPCPort: grpcL.Addr().(*net.TCPAddr).Port,
		cancel:   cancel,
	}

	httpCtrl := http_controller.New(svc, logger.With().Str("scope", "fake_http").Logger())
	grpcCtrl := grpc_controller.New(svc, logger.With().Str("scope", "fake_grpc").Logger())

	srv.run(func() error { return httpCtrl.Start(ctx, httpL) })
	srv.run(func() error { return grpcCtrl.Start(ctx, grpcL) })

	return srv, nil
}

func (srv *Server) run(fn func() error) {
	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		if err := fn(); err != nil {
			srv.mu.Lock()
			srv.errs = errors.Join(srv.errs, err)
			srv.mu.Unlock()
		}
	}()
}

// Stop shuts both controllers down and waits for them.
func (srv *Server) Stop() error {
	srv.cancel()
	srv.wg.Wait()

	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.errs
}
