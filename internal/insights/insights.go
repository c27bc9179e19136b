// Package insights adapts generative-AI providers into narrative commentary.
//
// Every call is bounded by the configured timeout, and every provider failure
// is reported as an Assessment with StatusUnavailable instead of an error, so
// numeric results are never lost because commentary could not be produced.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Providers
const (
	ProviderNone    = "none"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderWebhook = "webhook"
)

// DefaultTimeout bounds a provider call when Config.Timeout is unset.
const DefaultTimeout = 15 * time.Second

// Config is passed in at construction; the adapter keeps no global state.
type Config struct {
	Provider    string
	EndpointURL string // provider base URL override, required for webhook
	APIKey      string
	Model       string
	Timeout     time.Duration
}

// Status of an Assessment
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
	StatusDisabled    Status = "disabled"
)

// Assessment is the outcome of a narrative call: text and/or structured data
// on success, a failure indicator otherwise.
type Assessment struct {
	Status     Status                 `json:"status"`
	Provider   string                 `json:"provider,omitempty"`
	Text       string                 `json:"text,omitempty"`
	Structured map[string]interface{} `json:"structured,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// OK reports whether the provider produced commentary.
func (a Assessment) OK() bool {
	return a.Status == StatusOK
}

// request is what a provider receives. LLM providers use System and Prompt,
// the webhook provider posts Payload as JSON.
type request struct {
	Kind    string
	System  string
	Prompt  string
	Payload interface{}
}

type response struct {
	Text       string
	Structured map[string]interface{}
}

type provider interface {
	Name() string
	Generate(ctx context.Context, req request) (response, error)
}

// Adapter turns domain payloads into provider requests.
type Adapter struct {
	provider provider
	timeout  time.Duration
	log      zerolog.Logger
}

// New builds the adapter for cfg.Provider. An empty provider or "none" yields a
// disabled adapter.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Adapter, error) {
	a := &Adapter{
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "insights").Logger(),
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
	case ProviderGemini:
		p, err := newGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.provider = p
	case ProviderOpenAI:
		a.provider = newOpenAIProvider(cfg)
	case ProviderWebhook:
		if cfg.EndpointURL == "" {
			return nil, fmt.Errorf("webhook provider requires an endpoint URL")
		}
		a.provider = newWebhookProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", cfg.Provider)
	}

	if a.provider != nil {
		a.log.Info().Str("provider", a.provider.Name()).Dur("timeout", a.timeout).Msg("Narrative provider configured")
	}
	return a, nil
}

// Enabled reports whether a provider is configured.
func (a *Adapter) Enabled() bool {
	return a != nil && a.provider != nil
}

func (a *Adapter) generate(ctx context.Context, req request) Assessment {
	if !a.Enabled() {
		return Assessment{Status: StatusDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.provider.Generate(ctx, req)
	if err == nil && resp.Text == "" && len(resp.Structured) == 0 {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", a.timeout, err)
		}
		a.log.Warn().
			Err(err).
			Str("provider", a.provider.Name()).
			Str("kind", req.Kind).
			Msg("Narrative provider unavailable")
		return Assessment{
			Status:   StatusUnavailable,
			Provider: a.provider.Name(),
			Error:    err.Error(),
		}
	}

	a.log.Debug().
		Str("provider", a.provider.Name()).
		Str("kind", req.Kind).
		Dur("duration", time.Since(start)).
		Msg("Narrative generated")

	return Assessment{
		Status:     StatusOK,
		Provider:   a.provider.Name(),
		Text:       strings.TrimSpace(resp.Text),
		Structured: resp.Structured,
	}
}
