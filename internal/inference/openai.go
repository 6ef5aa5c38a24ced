package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/pkg/utils"
)

// APIError is a non-200 answer from an OpenAI-compatible endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopK        int           `json:"top_k,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIClient calls a chat-completions endpoint (OpenAI, vLLM, Ollama, ...).
type OpenAIClient struct {
	endpoint   string
	token      string
	params     Params
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a client for the chat-completions URL endpoint.
// token may be empty for local servers that do not check it.
func NewOpenAIClient(endpoint, token string, timeout time.Duration, params Params, logger *zap.Logger) (*OpenAIClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("chat-completions endpoint is required")
	}
	return &OpenAIClient{
		endpoint:   endpoint,
		token:      token,
		params:     params,
		httpClient: &http.Client{Timeout: timeout},
		logger:     utils.OrNop(logger),
	}, nil
}

// Query posts a system + user message pair and returns the first choice's content.
func (c *OpenAIClient) Query(ctx context.Context, batch, instruction string) (string, error) {
	const op = "inference.OpenAI"

	body, err := json.Marshal(chatRequest{
		Model: c.params.Model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: batch},
		},
		Temperature: c.params.Temperature,
		MaxTokens:   c.params.MaxTokens,
		TopK:        c.params.TopK,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable(op, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := c.handleAPIError(resp)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", unavailable(op, apiErr)
		}
		return "", rejected(op, apiErr)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		if contextFailure(err) {
			return "", unavailable(op, err)
		}
		return "", rejected(op, fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Debug("chat completion usage",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", rejected(op, errors.New("empty response from chat completion"))
	}
	c.logger.Debug("chat completion finish reason", zap.String("finish_reason", chatResp.Choices[0].FinishReason))
	return chatResp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) handleAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}
}
