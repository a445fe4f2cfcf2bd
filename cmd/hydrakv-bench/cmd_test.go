package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func Test_RunFake(t *testing.T) {
	for _, args := range [][]string{
		{"run", "--fake", "--num-ops", "20", "--concurrency", "4"},
		{"run", "--fake", "--grpc", "--num-ops", "20"},
	} {
		cmd := newRootCmd(zerolog.Nop())
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute(), args)
	}
}

func Test_RunEnv(t *testing.T) {
	t.Setenv("HYDRAKV_FAKE", "true")
	t.Setenv("HYDRAKV_NUM_OPS", "10")

	cmd := newRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"run"})
	require.NoError(t, cmd.Execute())
}

func Test_RunUnreachable(t *testing.T) {
	cmd := newRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"run", "--host", "127.0.0.1", "--port", "1", "--timeout", "200ms"})
	require.Error(t, cmd.Execute())
}

func Test_RunInvalidFlags(t *testing.T) {
	cmd := newRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"run", "--fake", "--concurrency", "0"})
	require.Error(t, cmd.Execute())
}

func Test_RunAPIKeyFlag(t *testing.T) {
	cmd := newRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"run", "--fake", "--api-key", "unused", "--num-ops", "5"})
	require.NoError(t, cmd.Execute())
}
