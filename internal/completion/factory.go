package completion

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/config"
)

// FromConfig builds the provider chain GLM -> DeepSeek -> OpenAI ->
// Anthropic, skipping every provider without an API key.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Chain {
	var providers []Provider

	add := func(p Provider, err error) {
		if err != nil {
			logger.Warn("skipping completion provider", "action", "completion.setup", "error", err.Error())
			return
		}
		providers = append(providers, p)
	}

	if cfg.GLMAPIKey != "" {
		add(NewOpenAI(OpenAIConfig{
			Name:        "glm",
			BaseURL:     cfg.GLMBaseURL,
			APIKey:      cfg.GLMAPIKey,
			Model:       cfg.GLMModel,
			VisionModel: cfg.GLMVisionModel,
		}))
	}
	if cfg.DeepSeekAPIKey != "" {
		add(NewOpenAI(OpenAIConfig{
			Name:    "deepseek",
			BaseURL: cfg.DeepSeekBaseURL,
			APIKey:  cfg.DeepSeekAPIKey,
			Model:   cfg.DeepSeekModel,
		}))
	}
	if cfg.OpenAIAPIKey != "" {
		add(NewOpenAI(OpenAIConfig{
			Name:             "openai",
			BaseURL:          cfg.OpenAIBaseURL,
			APIKey:           cfg.OpenAIAPIKey,
			Model:            cfg.OpenAIModel,
			VisionModel:      cfg.OpenAIModel,
			StructuredOutput: true,
		}))
	}
	if cfg.AnthropicAPIKey != "" {
		add(NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}

	return NewChain(cfg.AITimeout, logger, providers...)
}
