package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(opts ...Option) *Client {
	return NewClient(append([]Option{WithBackoff(time.Millisecond, 2*time.Second)}, opts...)...)
}

func TestClientPost(t *testing.T) {
	ctx := context.Background()

	t.Run("retries server errors until a final response", func(t *testing.T) {
		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "r1", body["request_id"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"value":42}}`))
		}))
		defer srv.Close()

		resp, err := fastClient().Post(ctx, "r1", srv.URL, map[string]string{"request_id": "r1"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":{"value":42}}`, string(resp.Body))
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("client errors are final and not retried", func(t *testing.T) {
		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		resp, err := fastClient().Post(ctx, "r1", srv.URL, struct{}{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := NewClient(WithBackoff(time.Millisecond, 50*time.Millisecond))
		_, err := client.Post(ctx, "r1", srv.URL, struct{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("deduplicates concurrent deliveries for the same key", func(t *testing.T) {
		release := make(chan struct{})
		entered := make(chan struct{}, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			entered <- struct{}{}
			<-release
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := fastClient()
		done := make(chan error, 1)
		go func() {
			_, err := client.Post(ctx, "r1", srv.URL, struct{}{})
			done <- err
		}()
		<-entered

		_, err := client.Post(ctx, "r1", srv.URL, struct{}{})
		assert.ErrorIs(t, err, ErrInFlight)

		close(release)
		require.NoError(t, <-done)
	})

	t.Run("attaches a bearer token scoped to the key", func(t *testing.T) {
		issuer := NewTokenIssuer("callback-secret", "as1", time.Minute)
		var header atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header.Store(r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		_, err := fastClient(WithTokenIssuer(issuer)).Post(ctx, "r9", srv.URL, struct{}{})
		require.NoError(t, err)

		auth, _ := header.Load().(string)
		require.True(t, strings.HasPrefix(auth, "Bearer "))
		claims, err := issuer.Validate(strings.TrimPrefix(auth, "Bearer "))
		require.NoError(t, err)
		assert.Equal(t, "as1", claims.NodeID)
		assert.Equal(t, "r9", claims.RequestID)
		assert.NotEmpty(t, claims.ID)
	})
}

func TestClientNotify(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := fastClient().Notify(context.Background(), srv.URL, map[string]string{"type": "error"})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "notifications are not retried")
}
