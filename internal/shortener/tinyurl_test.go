package shortener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBackend(srv *httptest.Server, timeout time.Duration) *TinyURLBackend {
	return NewTinyURLBackend(srv.URL, "test-key", timeout, zap.NewNop())
}

func TestTinyURLBackend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"tiny_url":"https://tinyurl.com/abc123","alias":"abc123"}}`))
	}))
	defer srv.Close()

	res, err := newTestBackend(srv, 0).Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Alias)
	assert.Equal(t, "https://tinyurl.com/abc123", res.ShortURL)
}

func TestTinyURLBackend_AliasFromShortURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"tiny_url":"https://tinyurl.com/xyz789"}}`))
	}))
	defer srv.Close()

	res, err := newTestBackend(srv, 0).Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "xyz789", res.Alias)
}

func TestTinyURLBackend_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rejected", http.StatusUnprocessableEntity, `{}`, ErrRejected},
		{"rejected bad request", http.StatusBadRequest, `{}`, ErrRejected},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, `{}`, ErrUnavailable},
		{"server error", http.StatusInternalServerError, `{}`, ErrUnavailable},
		{"malformed json", http.StatusOK, `{not json`, ErrMalformedResponse},
		{"empty tiny_url", http.StatusOK, `{"data":{}}`, ErrMalformedResponse},
		{"provider errors", http.StatusOK, `{"data":{"tiny_url":"https://tinyurl.com/a"},"errors":["blocked domain"]}`, ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestBackend(srv, 0).Shorten(context.Background(), "https://example.com")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTinyURLBackend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newTestBackend(srv, 50*time.Millisecond).Shorten(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestTinyURLBackend_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立刻关掉，制造连接失败

	_, err := NewTinyURLBackend(srv.URL, "", time.Second, zap.NewNop()).Shorten(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}
