package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePayload = RiskPayload{
	Tickers: []string{"AAPL", "MSFT"},
	Weights: []float64{0.6, 0.4},
	Returns: []float64{0.001, 0.0008},
	Risk:    0.21,
}

func newWebhookAdapter(t *testing.T, url string, timeout time.Duration) *Adapter {
	t.Helper()
	a, err := New(context.Background(), Config{
		Provider:    ProviderWebhook,
		EndpointURL: url,
		APIKey:      "test-key",
		Timeout:     timeout,
	}, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func TestNew_Disabled(t *testing.T) {
	for _, provider := range []string{"", "none", "NONE"} {
		a, err := New(context.Background(), Config{Provider: provider}, zerolog.Nop())
		require.NoError(t, err)
		assert.False(t, a.Enabled())

		got := a.AssessRisk(context.Background(), samplePayload)
		assert.Equal(t, StatusDisabled, got.Status)
		assert.False(t, got.OK())
	}
}

func TestNew_RejectsMisconfiguration(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "smoke-signals"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Provider: ProviderWebhook}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Provider: ProviderGemini}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWebhook_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "risk_assessment", r.Header.Get("X-Insight-Kind"))

		var got RiskPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, samplePayload, got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"insight":"Concentrated in large-cap tech.","score":7}`))
	}))
	defer server.Close()

	a := newWebhookAdapter(t, server.URL, time.Second)
	got := a.AssessRisk(context.Background(), samplePayload)

	assert.True(t, got.OK())
	assert.Equal(t, ProviderWebhook, got.Provider)
	assert.Equal(t, "Concentrated in large-cap tech.", got.Text)
	assert.Equal(t, float64(7), got.Structured["score"])
	assert.Empty(t, got.Error)
}

func TestWebhook_PlainTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("  Stay diversified.  "))
	}))
	defer server.Close()

	got := newWebhookAdapter(t, server.URL, time.Second).Strategy(context.Background(), Preferences{RiskTolerance: "low"})
	assert.True(t, got.OK())
	assert.Equal(t, "Stay diversified.", got.Text)
}

func TestWebhook_NonSuccessStatusIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	got := newWebhookAdapter(t, server.URL, time.Second).AssessRisk(context.Background(), samplePayload)
	assert.Equal(t, StatusUnavailable, got.Status)
	assert.Contains(t, got.Error, "503")
	assert.Empty(t, got.Text)
}

func TestWebhook_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	got := newWebhookAdapter(t, server.URL, 50*time.Millisecond).AssessRisk(context.Background(), samplePayload)

	assert.Equal(t, StatusUnavailable, got.Status)
	assert.Contains(t, got.Error, "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWebhook_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	got := newWebhookAdapter(t, url, time.Second).SymbolInsight(context.Background(), "AAPL", []float64{1, 2})
	assert.Equal(t, StatusUnavailable, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestWebhook_EmptyObjectIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	got := newWebhookAdapter(t, server.URL, time.Second).AssessRisk(context.Background(), samplePayload)
	assert.Equal(t, StatusUnavailable, got.Status)
}

func TestOpenAI_Success(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Moderate risk."},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	a, err := New(context.Background(), Config{
		Provider:    ProviderOpenAI,
		EndpointURL: server.URL + "/",
		APIKey:      "sk-test",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	got := a.AssessRisk(context.Background(), samplePayload)
	assert.True(t, got.OK(), got.Error)
	assert.Equal(t, "Moderate risk.", got.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAI_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	a, err := New(context.Background(), Config{
		Provider:    ProviderOpenAI,
		EndpointURL: server.URL + "/",
		APIKey:      "sk-test",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	got := a.AssessRisk(context.Background(), samplePayload)
	assert.Equal(t, StatusUnavailable, got.Status)
	assert.Equal(t, ProviderOpenAI, got.Provider)
}

func TestGemini_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Well balanced."}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer server.Close()

	a, err := New(context.Background(), Config{
		Provider:    ProviderGemini,
		EndpointURL: server.URL + "/",
		APIKey:      "g-test",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	got := a.AssessRisk(context.Background(), samplePayload)
	assert.True(t, got.OK(), got.Error)
	assert.Equal(t, "Well balanced.", got.Text)
}

func TestGemini_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	a, err := New(context.Background(), Config{
		Provider:    ProviderGemini,
		EndpointURL: server.URL + "/",
		APIKey:      "g-test",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	got := a.AssessRisk(context.Background(), samplePayload)
	assert.Equal(t, StatusUnavailable, got.Status)
}

func TestParseWebhookBody(t *testing.T) {
	assert.Equal(t, "x", parseWebhookBody([]byte(`"x"`)).Text)
	assert.Equal(t, "y", parseWebhookBody([]byte(`{"text":"y"}`)).Text)
	assert.Equal(t, "z", parseWebhookBody([]byte("z\n")).Text)
}
