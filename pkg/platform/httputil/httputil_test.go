package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "xcmkit/pkg/domain-errors"
)

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeInvalidInput:         http.StatusBadRequest,
		dErrors.CodeInvalidLocation:      http.StatusBadRequest,
		dErrors.CodeInvalidXcmVersion:    http.StatusBadRequest,
		dErrors.CodeValidation:           http.StatusBadRequest,
		dErrors.CodeUnsupportedDirection: http.StatusUnprocessableEntity,
		dErrors.CodeAssetNotFound:        http.StatusNotFound,
		dErrors.CodeNotFound:             http.StatusNotFound,
		dErrors.CodeUnauthorized:         http.StatusUnauthorized,
		dErrors.CodeUnavailable:          http.StatusServiceUnavailable,
		dErrors.CodeTimeout:              http.StatusGatewayTimeout,
		dErrors.CodeRateLimited:          http.StatusTooManyRequests,
		dErrors.CodeInvariantViolation:   http.StatusInternalServerError,
		dErrors.CodeInternal:             http.StatusInternalServerError,
	}
	for code, status := range cases {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, status, StatusFor(code))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("client errors carry their description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeUnsupportedDirection, "ParaToRelay transfers are not supported"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error":"unsupported_direction","error_description":"ParaToRelay transfers are not supported"}`, w.Body.String())
	})

	t.Run("wrapped codes survive fmt wrapping", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := fmt.Errorf("resolve: %w", dErrors.New(dErrors.CodeAssetNotFound, "USDT not found on statemine"))
		WriteError(w, err)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"asset_not_found"`)
	})

	t.Run("internal errors hide the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "connection refused on 10.0.0.4"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

type classifyRequest struct {
	Origin string `json:"origin"`
}

func (r *classifyRequest) Validate() error {
	r.Origin = strings.TrimSpace(r.Origin)
	if r.Origin == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "origin is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	decode := func(body string) (*classifyRequest, *httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req, ok := DecodeAndPrepare[classifyRequest](w, r, nil, context.Background(), "req-1")
		return req, w, ok
	}

	t.Run("validates and normalises", func(t *testing.T) {
		req, _, ok := decode(`{"origin":" statemine "}`)
		require.True(t, ok)
		assert.Equal(t, "statemine", req.Origin)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		_, w, ok := decode(`{`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"bad_request"`)
	})

	t.Run("validation errors keep their code", func(t *testing.T) {
		_, w, ok := decode(`{"origin":"  "}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"invalid_input"`)
	})
}
