package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/research-service/internal/http/ratelimit"
)

// fastConfig removes pacing and shrinks backoffs so retry tests run fast.
func fastConfig() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 0, // unlimited
		Burst:             1,
		MaxRetries:        2,
		InitialBackoffMs:  1,
		MaxBackoffMs:      5,
	}
}

func TestClientGetBytes(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-RapidAPI-Key")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := NewClient(fastConfig())
	header := http.Header{}
	header.Set("X-RapidAPI-Key", "test-key")

	body, err := client.GetBytes(context.Background(), server.URL, header)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(body))
	assert.Equal(t, "TrendScout-ResearchService/1.0", gotUA)
	assert.Equal(t, "test-key", gotCustom)
}

func TestClientRetriesOn5xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	body, err := client.GetBytes(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	_, err := client.GetBytes(context.Background(), server.URL, nil)
	require.Error(t, err)

	var retryErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, http.StatusBadRequest, retryErr.LastStatus)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastConfig()
	client := NewClient(cfg)

	_, err := client.GetBytes(context.Background(), server.URL, nil)
	require.Error(t, err)

	var retryErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, cfg.MaxRetries+1, retryErr.Attempts)
	assert.Equal(t, int32(cfg.MaxRetries+1), atomic.LoadInt32(&calls))
}

func TestClientPostJSONReplaysBodyAcrossRetries(t *testing.T) {
	var calls int32
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		lastBody = string(buf)
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`done`))
	}))
	defer server.Close()

	client := NewClient(fastConfig())

	body, err := client.PostJSON(context.Background(), server.URL, nil, []byte(`{"q": "lamp"}`))
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.JSONEq(t, `{"q": "lamp"}`, lastBody)
}

func TestClientContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(fastConfig())
	_, err := client.GetBytes(ctx, server.URL, nil)
	assert.Error(t, err)
}
