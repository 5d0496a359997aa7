package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"price": 42.5}`))
	}))
	defer srv.Close()

	var out struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, New("Test").GetJSON(context.Background(), srv.URL, &out))
	assert.InDelta(t, 42.5, out.Price, 1e-9)
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   talent.Kind
		msg    string
	}{
		{"rate limited", http.StatusTooManyRequests, talent.KindRateLimited, "Test rate limit reached. Please wait a minute and try again."},
		{"not found", http.StatusNotFound, talent.KindNotFound, "Test has no data for that request."},
		{"server error", http.StatusBadGateway, talent.KindRemote, "Test returned an error (HTTP 502)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := New("Test").Get(context.Background(), srv.URL)
			require.Error(t, err)
			assert.Equal(t, tt.kind, talent.KindOf(err))
			assert.Equal(t, tt.msg, talent.Describe(err))
			if tt.kind != talent.KindRateLimited {
				assert.Equal(t, tt.status, StatusCode(err))
			}
		})
	}
}

func TestCacheServesRepeatedRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("Test", WithCache(time.Minute))
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("Test", WithRateLimit(0.001, 1))
	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), srv.URL)
	assert.Equal(t, talent.KindRateLimited, talent.KindOf(err))
}

func TestDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New("Test").GetJSON(context.Background(), srv.URL, &out)
	assert.Equal(t, talent.KindRemote, talent.KindOf(err))
}
