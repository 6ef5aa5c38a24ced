package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/internal/config"
)

// NewClient builds the client selected by cfg.Provider, wrapped with retries.
func NewClient(ctx context.Context, cfg *config.InferenceConfig, logger *zap.Logger) (Client, error) {
	params := Params{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopK:        cfg.TopK,
		MaxTokens:   cfg.MaxTokens,
	}

	var (
		c   Client
		err error
	)
	switch cfg.Provider {
	case config.ProviderBedrock:
		c, err = NewBedrockClient(ctx, cfg.Region, params, logger)
	case config.ProviderGemini:
		c, err = NewGeminiClient(ctx, cfg.APIKey(), params, logger)
	case config.ProviderOpenAI:
		c, err = NewOpenAIClient(cfg.Endpoint, cfg.APIKey(), cfg.Timeout(), params, logger)
	case config.ProviderMock:
		c = NewMockClient()
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(c, cfg.Retries(), cfg.RetryBase(), logger), nil
}
