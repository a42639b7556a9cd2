package pyprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService 启动一个模拟的Python推理服务
func newTestService(t *testing.T, handler http.HandlerFunc) *SummarizeClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(DefaultConfig().WithBaseURL(server.URL).WithTimeout(5 * time.Second))
	require.NoError(t, err)
	return NewSummarizeClient(client)
}

func TestSummarize(t *testing.T) {
	var received SummarizeRequest
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/python/summarize", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(SummarizeResponse{
			Summary:      "यह सारांश है।",
			Model:        "mbart",
			InputTokens:  12,
			OutputTokens: 31,
		})
	})

	req := SummarizeRequest{
		Text:              "यह एक परीक्षण वाक्य है।",
		SrcLang:           "hi_IN",
		MaxInputTokens:    512,
		Truncation:        true,
		MinLength:         30,
		MaxLength:         128,
		NumBeams:          4,
		LengthPenalty:     2.0,
		EarlyStopping:     true,
		SkipSpecialTokens: true,
	}
	resp, err := client.Summarize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "यह सारांश है।", resp.Summary)
	assert.Equal(t, 31, resp.OutputTokens)
	assert.Equal(t, req, received)
}

func TestSummarizeErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("service should not be called")
		})
		_, err := client.Summarize(context.Background(), SummarizeRequest{})
		assert.Error(t, err)
	})

	t.Run("api error detail", func(t *testing.T) {
		client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"input too short"}`))
		})
		_, err := client.Summarize(context.Background(), SummarizeRequest{Text: "x"})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		assert.Equal(t, "input too short", apiErr.Detail)
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		var calls int32
		client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.Summarize(context.Background(), SummarizeRequest{Text: "x"})
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/python/health", r.URL.Path)
			_, _ = w.Write([]byte(`{"status":"ok","model":"mbart","model_loaded":true}`))
		})
		resp, err := client.Health(context.Background())
		require.NoError(t, err)
		assert.True(t, resp.ModelLoaded)
	})

	t.Run("loading", func(t *testing.T) {
		client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"loading"}`))
		})
		_, err := client.Health(context.Background())
		assert.Error(t, err)
	})
}

func TestClientRetryOnNetworkError(t *testing.T) {
	cfg := DefaultConfig().WithBaseURL("http://127.0.0.1:1").WithRetry(2, 10*time.Millisecond)
	client, err := NewClient(cfg)
	require.NoError(t, err)

	err = client.Get(context.Background(), "/python/health", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request failed")
}
