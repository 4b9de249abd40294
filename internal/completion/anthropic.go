package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicMaxTokens = 4096

type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic builds a provider for the Messages API. opts are passed to
// the client, e.g. anthropic.WithBaseURL in tests.
func NewAnthropic(apiKey, model string, opts ...anthropic.ClientOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	return &AnthropicProvider{client: anthropic.NewClient(apiKey, opts...), model: model}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	content := make([]anthropic.MessageContent, 0, len(req.Images)+1)
	for _, img := range req.Images {
		content = append(content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
			Type:      anthropic.MessagesContentSourceTypeBase64,
			MediaType: img.MediaType,
			Data:      img.base64(),
		}))
	}
	prompt := req.Prompt
	content = append(content, anthropic.MessageContent{Type: "text", Text: &prompt})

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		MaxTokens: defaultAnthropicMaxTokens,
		System:    systemPrompt(req),
		Messages:  []anthropic.Message{{Role: anthropic.RoleUser, Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return ExtractJSON(*block.Text)
		}
	}
	return nil, errors.New("no text content in response")
}
