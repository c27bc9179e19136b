package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// webhookProvider posts the raw payload to an HTTP endpoint.
type webhookProvider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func newWebhookProvider(cfg Config) *webhookProvider {
	return &webhookProvider{
		endpoint:   cfg.EndpointURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{},
	}
}

func (p *webhookProvider) Name() string { return ProviderWebhook }

func (p *webhookProvider) Generate(ctx context.Context, req request) (response, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return response{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Insight-Kind", req.Kind)
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, fmt.Errorf("endpoint returned status %d, body: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	return parseWebhookBody(raw), nil
}

// parseWebhookBody accepts a JSON object (using "insight" or "text" as the
// narrative when present), a JSON string, or plain text.
func parseWebhookBody(raw []byte) response {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		out := response{Structured: obj}
		for _, key := range []string{"insight", "text", "assessment"} {
			if s, ok := obj[key].(string); ok {
				out.Text = s
				break
			}
		}
		return out
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return response{Text: s}
	}

	return response{Text: strings.TrimSpace(string(raw))}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
