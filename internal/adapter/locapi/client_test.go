package locapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dulegil/region-service/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func highOpts() location.Options {
	return location.Options{HighAccuracy: true, Timeout: 5 * time.Second, MaxAge: time.Minute}
}

func TestAcquire_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/position", r.URL.Path)
		assert.Equal(t, "high", r.URL.Query().Get("accuracy"))
		assert.Equal(t, "5000", r.URL.Query().Get("timeout_ms"))
		assert.Equal(t, "60000", r.URL.Query().Get("max_age_ms"))

		require.NoError(t, json.NewEncoder(w).Encode(positionResponse{Lat: 37.8813, Lon: 127.7298}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	coord, err := c.Acquire(context.Background(), highOpts())

	require.NoError(t, err)
	assert.Equal(t, 37.8813, coord.Lat)
	assert.Equal(t, 127.7298, coord.Lon)
}

func TestAcquire_CoarseTierParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "coarse", r.URL.Query().Get("accuracy"))
		require.NoError(t, json.NewEncoder(w).Encode(positionResponse{Lat: 37.0, Lon: 127.0}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	_, err := c.Acquire(context.Background(), location.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
}

func TestAcquire_ClassifiesBodyCode(t *testing.T) {
	cases := []struct {
		code string
		kind location.ErrorKind
	}{
		{"not_supported", location.KindNotSupported},
		{"permission_denied", location.KindPermissionDenied},
		{"position_unavailable", location.KindPositionUnavailable},
		{"timeout", location.KindTimeout},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict) // status deliberately unhelpful
			require.NoError(t, json.NewEncoder(w).Encode(errorResponse{Code: tc.code}))
		}))

		c := NewClient(srv.URL, discardLogger())
		_, err := c.Acquire(context.Background(), highOpts())
		srv.Close()

		require.Error(t, err, tc.code)
		assert.Equal(t, tc.kind, location.KindOf(err), "code %s", tc.code)
	}
}

func TestAcquire_ClassifiesStatusFallback(t *testing.T) {
	cases := []struct {
		status int
		kind   location.ErrorKind
	}{
		{http.StatusForbidden, location.KindPermissionDenied},
		{http.StatusNotImplemented, location.KindNotSupported},
		{http.StatusServiceUnavailable, location.KindPositionUnavailable},
		{http.StatusGatewayTimeout, location.KindTimeout},
		{http.StatusTeapot, location.KindUnknown},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "no body code", tc.status)
		}))

		c := NewClient(srv.URL, discardLogger())
		_, err := c.Acquire(context.Background(), highOpts())
		srv.Close()

		require.Error(t, err, tc.status)
		assert.Equal(t, tc.kind, location.KindOf(err), "status %d", tc.status)
	}
}

func TestAcquire_DeadBridgeIsPositionUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, discardLogger())
	_, err := c.Acquire(context.Background(), highOpts())

	require.Error(t, err)
	assert.Equal(t, location.KindPositionUnavailable, location.KindOf(err))
}

func TestAcquire_SlowBridgeTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, discardLogger())
	opts := location.Options{HighAccuracy: true, Timeout: 50 * time.Millisecond, MaxAge: time.Minute}
	_, err := c.Acquire(context.Background(), opts)

	require.Error(t, err)
	assert.Equal(t, location.KindTimeout, location.KindOf(err))
}
