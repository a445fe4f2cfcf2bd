package testutil

import (
	"testing"

	"github.com/horockey/hydrakv/internal/fakeserver"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/rs/zerolog"
)

type FakeServer = fakeserver.Server

// StartFake starts a fresh fake service stopped on test cleanup.
func StartFake(t testing.TB, opts ...fakeservice.Option) *FakeServer {
	t.Helper()

	svc, err := fakeservice.New(opts...)
	if err != nil {
		t.Fatalf("creating fake service: %v", err)
	}

	srv, err := fakeserver.Start(svc, zerolog.Nop())
	if err != nil {
		t.Fatalf("starting fake service: %v", err)
	}

	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Errorf("stopping fake service: %v", err)
		}
	})

	return srv
}
