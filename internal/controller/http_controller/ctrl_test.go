package http_controller_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/hydrakv/internal/controller/http_controller"
	"github.com/horockey/hydrakv/internal/controller/http_controller/dto"
	"github.com/horockey/hydrakv/internal/fakeservice"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...fakeservice.Option) (*resty.Client, *fakeservice.Service) {
	t.Helper()

	svc, err := fakeservice.New(opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(http_controller.New(svc, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	return resty.New().SetBaseURL(srv.URL), svc
}

func Test_Routes(t *testing.T) {
	cl, svc := newServer(t)

	created := dto.APIKey{}
	resp, err := cl.R().
		SetBody(dto.CreateDB{Name: "t1"}).
		SetResult(&created).
		Post("/create")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.NotEmpty(t, created.APIKey)

	exists := dto.Exists{}
	resp, err = cl.R().SetResult(&exists).Get("/db/t1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.True(t, exists.Exists)

	// header key
	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, created.APIKey).
		SetBody(dto.KeyRequest{Key: "a", Value: "1"}).
		Put("/db/t1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	// body key
	incr := dto.IncrResult{}
	resp, err = cl.R().
		SetBody(dto.KeyRequest{Key: "a", Delta: 2, APIKey: created.APIKey}).
		SetResult(&incr).
		Patch("/db/t1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int64(3), incr.Value)

	val := dto.Value{}
	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, created.APIKey).
		SetBody(dto.KeyRequest{Key: "a"}).
		SetResult(&val).
		Post("/db/t1/keys")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "3", val.Value)

	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, created.APIKey).
		SetBody(dto.KeyRequest{Key: "a", Value: "2"}).
		Post("/db/t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode())

	renewed := dto.APIKey{}
	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, created.APIKey).
		SetResult(&renewed).
		Execute(http_controller.MethodUpdate, "/db/t1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.NotEqual(t, created.APIKey, renewed.APIKey)

	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, created.APIKey).
		SetBody(dto.KeyRequest{Key: "a"}).
		Post("/db/t1/keys")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, renewed.APIKey).
		SetBody(dto.KeyRequest{Key: "a"}).
		Delete("/db/t1/keys")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = cl.R().
		SetHeader(http_controller.APIKeyHeader, renewed.APIKey).
		Delete("/db/t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.False(t, svc.DBExists("t1"))
}

func Test_QueueRoutes(t *testing.T) {
	cl, _ := newServer(t)

	resp, err := cl.R().SetBody(dto.Queue{Name: "q", Limit: 2}).Post("/fifolifo")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	for _, v := range []string{"a", "b", "c"} {
		resp, err = cl.R().SetBody(dto.Queue{Name: "q", Value: v}).Put("/fifolifo")
		require.NoError(t, err)
		if v == "c" {
			assert.Equal(t, http.StatusConflict, resp.StatusCode())
			continue
		}
		require.Equal(t, http.StatusOK, resp.StatusCode())
	}

	val := dto.Value{}
	resp, err = cl.R().SetBody(dto.Queue{Name: "q"}).SetResult(&val).Post("/lifo")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "b", val.Value)

	resp, err = cl.R().SetBody(dto.Queue{Name: "q"}).SetResult(&val).Post("/fifo")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "a", val.Value)

	resp, err = cl.R().SetBody(dto.Queue{Name: "q"}).Post("/fifo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = cl.R().SetBody(dto.Queue{Name: "q"}).Delete("/fifolifo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func Test_BadRequests(t *testing.T) {
	cl, _ := newServer(t, fakeservice.WithAuthDisabled())

	resp, err := cl.R().
		SetHeader("Content-Type", "application/json").
		SetBody("{not json").
		Post("/create")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	resp, err = cl.R().Get("/nowhere")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode())

	_, err = cl.R().SetBody(dto.CreateDB{Name: "t1"}).Post("/create")
	require.NoError(t, err)

	resp, err = cl.R().Execute(http_controller.MethodUpdate, "/db/t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
}

func Test_StatusByErr(t *testing.T) {
	for err, code := range map[error]int{
		fakeservice.ErrInvalidArgument: http.StatusBadRequest,
		fakeservice.ErrNotInteger:      http.StatusBadRequest,
		fakeservice.ErrUnauthorized:    http.StatusUnauthorized,
		fakeservice.ErrDBNotFound:      http.StatusNotFound,
		fakeservice.ErrKeyNotFound:     http.StatusNotFound,
		fakeservice.ErrQueueEmpty:      http.StatusNotFound,
		fakeservice.ErrKeyExists:       http.StatusConflict,
		fakeservice.ErrQueueFull:       http.StatusConflict,
		fakeservice.ErrAuthDisabled:    http.StatusServiceUnavailable,
		errors.New("boom"):             http.StatusInternalServerError,
	} {
		assert.Equal(t, code, http_controller.StatusByErr(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}
