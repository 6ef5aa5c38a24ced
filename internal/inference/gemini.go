package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hyperjump/ecorank/pkg/utils"
)

// generator is the subset of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls a Gemini model through the Google GenAI API.
type GeminiClient struct {
	models generator
	params Params
	logger *zap.Logger
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string, params Params, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiClient(client.Models, params, logger), nil
}

func newGeminiClient(models generator, params Params, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{models: models, params: params, logger: utils.OrNop(logger)}
}

// Query sends batch as user content with instruction as the system instruction.
func (c *GeminiClient) Query(ctx context.Context, batch, instruction string) (string, error) {
	const op = "inference.Gemini"

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(c.params.Temperature)),
		MaxOutputTokens:   int32(c.params.MaxTokens),
	}
	if c.params.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(c.params.TopK))
	}

	c.logger.Debug("gemini generate", zap.String("model", c.params.Model), zap.Int("batch_len", len(batch)))
	resp, err := c.models.GenerateContent(ctx, c.params.Model, genai.Text(batch), cfg)
	if err != nil {
		return "", classifyGeminiError(op, err)
	}
	if resp.UsageMetadata != nil {
		c.logger.Debug("gemini usage",
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	if len(resp.Candidates) > 0 {
		c.logger.Debug("gemini finish reason", zap.String("finish_reason", string(resp.Candidates[0].FinishReason)))
	}

	text := resp.Text()
	if text == "" {
		return "", rejected(op, errors.New("reply has no text content"))
	}
	return text, nil
}

func classifyGeminiError(op string, err error) error {
	if contextFailure(err) {
		return unavailable(op, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			return unavailable(op, err)
		}
		return rejected(op, err)
	}
	return unavailable(op, err)
}
