package insights

import (
	"context"
	"fmt"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIProvider struct {
	cli   oa.Client
	model string
}

func newOpenAIProvider(cfg Config) *openAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.EndpointURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIProvider{cli: oa.NewClient(opts...), model: model}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) Generate(ctx context.Context, req request) (response, error) {
	resp, err := p.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(p.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(req.System),
			oa.UserMessage(req.Prompt),
		},
		MaxTokens: oa.Int(600),
	})
	if err != nil {
		return response{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return response{}, fmt.Errorf("openai returned no choices")
	}
	return response{Text: resp.Choices[0].Message.Content}, nil
}
