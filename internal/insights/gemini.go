package insights

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(ctx context.Context, cfg Config) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.EndpointURL != "" {
		cc.HTTPOptions.BaseURL = cfg.EndpointURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{client: client, model: model}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Generate(ctx context.Context, req request) (response, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return response{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return response{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return response{Text: sb.String()}, nil
}
