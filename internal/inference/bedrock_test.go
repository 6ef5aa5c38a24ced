package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ecorank/internal/apperr"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func textOutput(parts ...string) *bedrockruntime.ConverseOutput {
	blocks := make([]types.ContentBlock, 0, len(parts))
	for _, p := range parts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: blocks,
		}},
		StopReason: types.StopReasonEndTurn,
		Usage:      &types.TokenUsage{InputTokens: aws.Int32(12), OutputTokens: aws.Int32(8), TotalTokens: aws.Int32(20)},
	}
}

func TestBedrockClient_Query(t *testing.T) {
	api := &fakeConverse{out: textOutput(`[{"product_name":"Widget",`, `"index":0.3}]`)}
	c := newBedrockClient(api, Params{Model: "anthropic.claude-3-sonnet-20240229-v1:0", Temperature: 0.5, TopK: 200, MaxTokens: 2048}, nil)

	reply, err := c.Query(context.Background(), "https://a.example/x, https://b.example/y", "judge emissions")
	require.NoError(t, err)
	assert.Equal(t, `[{"product_name":"Widget","index":0.3}]`, reply)

	in := api.input
	require.NotNil(t, in)
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", aws.ToString(in.ModelId))
	require.Len(t, in.Messages, 1)
	assert.Equal(t, types.ConversationRoleUser, in.Messages[0].Role)
	require.Len(t, in.Messages[0].Content, 1)
	assert.Equal(t, "https://a.example/x, https://b.example/y", in.Messages[0].Content[0].(*types.ContentBlockMemberText).Value)
	require.Len(t, in.System, 1)
	assert.Equal(t, "judge emissions", in.System[0].(*types.SystemContentBlockMemberText).Value)
	assert.Equal(t, float32(0.5), aws.ToFloat32(in.InferenceConfig.Temperature))
	assert.Equal(t, int32(2048), aws.ToInt32(in.InferenceConfig.MaxTokens))
	assert.NotNil(t, in.AdditionalModelRequestFields)
}

func TestBedrockClient_NoTopK(t *testing.T) {
	api := &fakeConverse{out: textOutput("[]")}
	c := newBedrockClient(api, Params{Model: "m"}, nil)
	_, err := c.Query(context.Background(), "l", "i")
	require.NoError(t, err)
	assert.Nil(t, api.input.AdditionalModelRequestFields)
}

func TestBedrockClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, apperr.AdapterUnavailable},
		{"model_timeout", &smithy.GenericAPIError{Code: "ModelTimeoutException"}, apperr.AdapterUnavailable},
		{"service_unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailableException"}, apperr.AdapterUnavailable},
		{"validation", &smithy.GenericAPIError{Code: "ValidationException", Message: "bad model"}, apperr.AdapterRejected},
		{"access_denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, apperr.AdapterRejected},
		{"transport", errors.New("dial tcp: connection refused"), apperr.AdapterUnavailable},
		{"deadline", context.DeadlineExceeded, apperr.AdapterUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBedrockClient(&fakeConverse{err: tt.err}, Params{Model: "m"}, nil)
			_, err := c.Query(context.Background(), "l", "i")
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestBedrockClient_NoTextRejected(t *testing.T) {
	c := newBedrockClient(&fakeConverse{out: textOutput()}, Params{Model: "m"}, nil)
	_, err := c.Query(context.Background(), "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterRejected))

	c = newBedrockClient(&fakeConverse{out: &bedrockruntime.ConverseOutput{}}, Params{Model: "m"}, nil)
	_, err = c.Query(context.Background(), "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterRejected))
}
