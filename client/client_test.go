package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giovaniif/items/cmd/api"
	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
	"github.com/giovaniif/items/infra/mirrors"
	"github.com/giovaniif/items/infra/repositories"
	"github.com/giovaniif/items/infra/retry"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := api.NewRouter(api.Dependencies{
		Repository: repositories.NewItemRepositoryMemory(),
		Mirror:     mirrors.NewBlobMirrorMemory(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Get(ctx, "foo")
	require.ErrorIs(t, err, item.ErrNotFound)

	created, err := c.Create(ctx, "foo", map[string]any{"name": "A"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "A"}, created)

	_, err = c.Create(ctx, "foo", map[string]any{"name": "again"})
	require.ErrorIs(t, err, item.ErrAlreadyExists)

	updated, err := c.Update(ctx, "foo", map[string]any{"name": "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "B"}, updated)

	got, err := c.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "B"}, got)

	require.NoError(t, c.Delete(ctx, "foo"))
	require.ErrorIs(t, c.Delete(ctx, "foo"), item.ErrNotFound)

	_, err = c.Update(ctx, "foo", map[string]any{"name": "C"})
	require.ErrorIs(t, err, item.ErrNotFound)
}

func TestClientEscapesIds(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Create(ctx, "with space", map[string]any{"ok": true})
	require.NoError(t, err)
	got, err := c.Get(ctx, "with space")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, got)
}

func TestClientServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items/slow":
			w.WriteHeader(http.StatusGatewayTimeout)
		case "/items/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, nil)

	_, err := c.Get(context.Background(), "slow")
	assert.ErrorIs(t, err, infra.ErrTimeout)

	_, err = c.Get(context.Background(), "broken")
	assert.True(t, infra.IsRetriable(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal server error", apiErr.Message)

	_, err = c.Get(context.Background(), "other")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)
}

func TestClientCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("http://127.0.0.1:1", nil).Get(ctx, "foo")
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientRetriesIdempotentCalls(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"n":9007199254740993}`))
	}))
	defer srv.Close()
	c := New(srv.URL, nil, WithRetry(retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond}))

	got, err := c.Get(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": json.Number("9007199254740993")}, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotRetryCreateOrNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Item not found"}`))
	}))
	defer srv.Close()
	c := New(srv.URL, nil, WithRetry(retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond}))

	_, err := c.Create(context.Background(), "foo", map[string]any{"name": "A"})
	assert.True(t, infra.IsRetriable(err))
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Get(context.Background(), "foo")
	require.ErrorIs(t, err, item.ErrNotFound)
	assert.Equal(t, int32(2), calls.Load())
}
