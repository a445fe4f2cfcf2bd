package http_remote_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/hydrakv/internal/gateway/remote_store/http_remote_store/dto"
	"github.com/horockey/hydrakv/internal/model"
)

func kindByStatus(code int) model.ErrorKind {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return model.KindInvalidArgument
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return model.KindUnauthenticated
	case code == http.StatusNotFound:
		return model.KindNotFound
	case code == http.StatusConflict:
		return model.KindConflict
	case code == http.StatusServiceUnavailable, code == http.StatusBadGateway, code == http.StatusGatewayTimeout:
		return model.KindUnavailable
	case code >= http.StatusInternalServerError:
		return model.KindInternal
	default:
		return model.KindUnknown
	}
}

func statusError(op string, resp *resty.Response) *model.RemoteError {
	return &model.RemoteError{
		Transport: model.TransportHTTP,
		Op:        op,
		Kind:      kindByStatus(resp.StatusCode()),
		Code:      strconv.Itoa(resp.StatusCode()),
		Message:   errorMessage(resp.Body()),
	}
}

// Service errors come either as {"error": ...}, {"message": ...} or plain text.
func errorMessage(body []byte) string {
	e := dto.Error{}
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Error != "":
			return e.Error
		case e.Message != "":
			return e.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func requestError(op string, err error) *model.RemoteError {
	kind := model.KindUnavailable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = model.KindCanceled
	}

	return &model.RemoteError{
		Transport: model.TransportHTTP,
		Op:        op,
		Kind:      kind,
		Err:       fmt.Errorf("executing request: %w", err),
	}
}

func decode[T any](op string, body []byte) (T, error) {
	var res T
	if err := json.Unmarshal(body, &res); err != nil {
		return res, &model.DecodeError{
			Transport: model.TransportHTTP,
			Op:        op,
			Err:       fmt.Errorf("unmarshaling json: %w", err),
		}
	}
	return res, nil
}

func missingField(op string, field string) error {
	return &model.DecodeError{
		Transport: model.TransportHTTP,
		Op:        op,
		Err:       fmt.Errorf("missing field %q", field),
	}
}
