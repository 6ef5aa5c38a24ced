package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ecorank/internal/apperr"
)

type scriptedClient struct {
	calls atomic.Int32
	errs  []error
	reply string
}

func (s *scriptedClient) Query(ctx context.Context, batch, instruction string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	return s.reply, nil
}

var errFlaky = apperr.New(apperr.AdapterUnavailable, "test", "flaky")

func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	inner := &scriptedClient{errs: []error{errFlaky, errFlaky}, reply: "[]"}
	c := WithRetry(inner, 2, time.Millisecond, nil)

	got, err := c.Query(context.Background(), "l", "i")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedClient{errs: []error{errFlaky, errFlaky, errFlaky, errFlaky}}
	c := WithRetry(inner, 2, time.Millisecond, nil)

	_, err := c.Query(context.Background(), "l", "i")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.AdapterUnavailable))
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestWithRetry_DoesNotRetryRejections(t *testing.T) {
	rejectedErr := apperr.New(apperr.AdapterRejected, "test", "bad request")
	inner := &scriptedClient{errs: []error{rejectedErr}}
	c := WithRetry(inner, 3, time.Millisecond, nil)

	_, err := c.Query(context.Background(), "l", "i")
	assert.True(t, errors.Is(err, apperr.AdapterRejected))
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestWithRetry_ContextEndsDuringBackoff(t *testing.T) {
	inner := &scriptedClient{errs: []error{errFlaky, errFlaky, errFlaky}}
	c := WithRetry(inner, 3, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.Query(ctx, "l", "i")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.AdapterUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestWithRetry_ZeroRetriesReturnsClient(t *testing.T) {
	inner := &scriptedClient{}
	assert.Same(t, Client(inner), WithRetry(inner, 0, time.Second, nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errFlaky))
	assert.False(t, IsTransient(apperr.Wrap(apperr.AdapterUnavailable, "op", context.DeadlineExceeded, "timeout")))
	assert.False(t, IsTransient(apperr.New(apperr.AdapterRejected, "op", "no")))
	assert.False(t, IsTransient(errors.New("plain")))
}
