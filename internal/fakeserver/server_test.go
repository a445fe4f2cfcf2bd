package fakeserver_test

import (
	"net"
	"net/http"
	"strconv"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/hydrakv/internal/fakeserver"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_StartStop(t *testing.T) {
	svc, err := fakeservice.New()
	require.NoError(t, err)

	srv, err := fakeserver.Start(svc, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, fakeserver.Host, srv.Host)
	assert.NotEqual(t, srv.HTTPPort, srv.GRPCPort)

	resp, err := resty.New().R().Get("http://" + net.JoinHostPort(srv.Host, strconv.Itoa(srv.HTTPPort)) + "/db/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	conn, err := net.Dial("tcp", net.JoinHostPort(srv.Host, strconv.Itoa(srv.GRPCPort)))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())

	_, err = net.Dial("tcp", net.JoinHostPort(srv.Host, strconv.Itoa(srv.HTTPPort)))
	assert.Error(t, err)
}
