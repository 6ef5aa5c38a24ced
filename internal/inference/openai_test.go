package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ecorank/internal/apperr"
)

func TestOpenAIClient_Query(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"[{\"product_name\":\"Widget\",\"index\":0.3}]"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "tok", 5*time.Second, Params{Model: "m", Temperature: 0.5, TopK: 200, MaxTokens: 100}, nil)
	require.NoError(t, err)

	reply, err := c.Query(context.Background(), "https://a.example/x", "judge emissions")
	require.NoError(t, err)
	assert.Equal(t, `[{"product_name":"Widget","index":0.3}]`, reply)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "judge emissions"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "https://a.example/x"}, got.Messages[1])
	assert.Equal(t, 0.5, got.Temperature)
	assert.Equal(t, 200, got.TopK)
}

func TestOpenAIClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   apperr.Kind
	}{
		{http.StatusServiceUnavailable, apperr.AdapterUnavailable},
		{http.StatusTooManyRequests, apperr.AdapterUnavailable},
		{http.StatusInternalServerError, apperr.AdapterUnavailable},
		{http.StatusBadRequest, apperr.AdapterRejected},
		{http.StatusUnauthorized, apperr.AdapterRejected},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c, err := NewOpenAIClient(srv.URL, "", time.Second, Params{Model: "m"}, nil)
			require.NoError(t, err)
			_, err = c.Query(context.Background(), "l", "i")
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.Body, "nope")
		})
	}
}

func TestOpenAIClient_EmptyChoicesRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "", time.Second, Params{}, nil)
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterRejected))
}

func TestOpenAIClient_TransportFailureUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewOpenAIClient(url, "", time.Second, Params{}, nil)
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterUnavailable))
}

func TestOpenAIClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewOpenAIClient(srv.URL, "", 10*time.Second, Params{}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Query(ctx, "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewOpenAIClient_RequiresEndpoint(t *testing.T) {
	_, err := NewOpenAIClient("", "", time.Second, Params{}, nil)
	assert.Error(t, err)
}
