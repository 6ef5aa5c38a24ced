package inference

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/pkg/utils"
)

// Retrying repeats transient failures of the wrapped client with Fibonacci
// backoff. Rejections and reply-level problems are returned immediately.
type Retrying struct {
	next       Client
	maxRetries uint64
	base       time.Duration
	logger     *zap.Logger
}

// WithRetry wraps c. maxRetries is the number of extra attempts; zero returns c unchanged.
func WithRetry(c Client, maxRetries int, base time.Duration, logger *zap.Logger) Client {
	if maxRetries <= 0 {
		return c
	}
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &Retrying{next: c, maxRetries: uint64(maxRetries), base: base, logger: utils.OrNop(logger)}
}

// Query calls the wrapped client until it succeeds, fails permanently, or the retries run out.
func (r *Retrying) Query(ctx context.Context, batch, instruction string) (string, error) {
	b := retry.WithMaxRetries(r.maxRetries, retry.NewFibonacci(r.base))
	attempt := 0
	reply, err := retry.DoValue(ctx, b, func(ctx context.Context) (string, error) {
		attempt++
		reply, err := r.next.Query(ctx, batch, instruction)
		if err != nil && IsTransient(err) {
			r.logger.Debug("inference attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return "", retry.RetryableError(err)
		}
		return reply, err
	})
	if err != nil && apperr.KindOf(err) == apperr.Unknown && contextFailure(err) {
		// The context ended between attempts; retry hands back the bare context error.
		return "", unavailable("inference.Retry", err)
	}
	return reply, err
}
