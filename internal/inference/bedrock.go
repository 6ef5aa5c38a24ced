package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/pkg/utils"
)

// converseAPI is the subset of the Bedrock runtime client used here.
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient calls a model through the Bedrock Converse API.
type BedrockClient struct {
	api    converseAPI
	params Params
	logger *zap.Logger
}

// transient Bedrock error codes; every other API error is a rejection.
var bedrockUnavailableCodes = map[string]bool{
	"ThrottlingException":         true,
	"ServiceUnavailableException": true,
	"InternalServerException":     true,
	"ModelTimeoutException":       true,
	"ModelNotReadyException":      true,
}

// NewBedrockClient loads AWS configuration for region and returns a client.
// Static credentials from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY are used
// when both are set; otherwise the default credential chain applies.
func NewBedrockClient(ctx context.Context, region string, params Params, logger *zap.Logger) (*BedrockClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		// Retries are handled by the Retrying decorator.
		awsconfig.WithRetryMaxAttempts(1),
	}
	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, os.Getenv("AWS_SESSION_TOKEN")),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newBedrockClient(bedrockruntime.NewFromConfig(cfg), params, logger), nil
}

func newBedrockClient(api converseAPI, params Params, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{api: api, params: params, logger: utils.OrNop(logger)}
}

// Query sends batch as the single user message with instruction as the system prompt.
func (c *BedrockClient) Query(ctx context.Context, batch, instruction string) (string, error) {
	const op = "inference.Bedrock"

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.params.Model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: batch}},
		}},
		System: []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: instruction}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(c.params.Temperature)),
			MaxTokens:   aws.Int32(int32(c.params.MaxTokens)),
		},
	}
	if c.params.TopK > 0 {
		input.AdditionalModelRequestFields = document.NewLazyDocument(map[string]any{"top_k": c.params.TopK})
	}

	c.logger.Debug("bedrock converse", zap.String("model", c.params.Model), zap.Int("batch_len", len(batch)))
	out, err := c.api.Converse(ctx, input)
	if err != nil {
		return "", classifyBedrockError(op, err)
	}

	if out.Usage != nil {
		c.logger.Debug("bedrock usage",
			zap.Int32("input_tokens", aws.ToInt32(out.Usage.InputTokens)),
			zap.Int32("output_tokens", aws.ToInt32(out.Usage.OutputTokens)),
			zap.Int32("total_tokens", aws.ToInt32(out.Usage.TotalTokens)),
		)
	}
	c.logger.Debug("bedrock stop reason", zap.String("stop_reason", string(out.StopReason)))

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", rejected(op, fmt.Errorf("unexpected output type %T", out.Output))
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", rejected(op, errors.New("reply has no text content"))
	}
	return sb.String(), nil
}

func classifyBedrockError(op string, err error) error {
	if contextFailure(err) {
		return unavailable(op, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if bedrockUnavailableCodes[apiErr.ErrorCode()] {
			return unavailable(op, err)
		}
		return rejected(op, err)
	}
	return unavailable(op, err)
}
