package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig describes an OpenAI-compatible endpoint (GLM, DeepSeek and
// OpenAI itself all speak this protocol).
type OpenAIConfig struct {
	Name        string
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	// StructuredOutput enables response_format json_schema. Without it the
	// schema is embedded in the system prompt and json_object is requested.
	StructuredOutput bool
}

type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientConfig), cfg: cfg}, nil
}

func (p *OpenAIProvider) Name() string { return p.cfg.Name }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	model := p.cfg.Model
	if len(req.Images) > 0 && p.cfg.VisionModel != "" {
		model = p.cfg.VisionModel
	}

	system := "You are a career guidance assistant. Respond with JSON only."
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	if p.cfg.StructuredOutput && len(req.Schema) > 0 {
		format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName(req),
				Schema: req.Schema,
			},
		}
	} else {
		system = systemPrompt(req)
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		user.Content = req.Prompt
	} else {
		user.MultiContent = []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
		for _, img := range req.Images {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: img.DataURL(), Detail: openai.ImageURLDetailAuto},
			})
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			user,
		},
		Temperature:    0.7,
		ResponseFormat: format,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}
	return ExtractJSON(resp.Choices[0].Message.Content)
}
