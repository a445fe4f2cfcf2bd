package model_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/horockey/hydrakv/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRemoteError_IsKind(t *testing.T) {
	err := fmt.Errorf("calling: %w", &model.RemoteError{
		Transport: model.TransportHTTP,
		Op:        "get",
		Kind:      model.KindUnauthenticated,
		Code:      "401",
		Message:   "bad key",
	})

	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	assert.NotErrorIs(t, err, model.ErrUnavailable)

	var re *model.RemoteError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, "401", re.Code)
	assert.Equal(t, "http get: unauthenticated (401): bad key", re.Error())
}

func TestRemoteError_UnwrapsContextErr(t *testing.T) {
	err := &model.RemoteError{
		Transport: model.TransportGRPC,
		Op:        "set",
		Kind:      model.KindCanceled,
		Err:       context.Canceled,
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, model.ErrCanceled)
}

func TestPreconditionError(t *testing.T) {
	err := &model.PreconditionError{Op: "set", Err: model.ErrEmptyKey}

	assert.ErrorIs(t, err, model.ErrEmptyKey)
	assert.False(t, errors.Is(err, model.ErrEmptyDBName))
	assert.Equal(t, "set: precondition failed: empty key", err.Error())
}
