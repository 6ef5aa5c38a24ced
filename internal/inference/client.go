// Package inference talks to the remote text-generation service that scores
// product links.
//
// A Client sends the batch text (all links joined with ", ") together with the
// instruction template and returns the raw reply text. Parsing and validating
// that text is the caller's job. Failures are classified as
// apperr.AdapterUnavailable (transport, throttling, timeouts) or
// apperr.AdapterRejected (the service answered with an error).
package inference

import (
	"context"
	"errors"

	"github.com/hyperjump/ecorank/internal/apperr"
)

// Client is a single-shot inference call.
type Client interface {
	Query(ctx context.Context, batch, instruction string) (string, error)
}

// Params are the sampling settings shared by all providers.
type Params struct {
	Model       string
	Temperature float64
	TopK        int
	MaxTokens   int
}

// unavailable classifies err as AdapterUnavailable.
func unavailable(op string, err error) error {
	return apperr.Wrap(apperr.AdapterUnavailable, op, err, "inference service unavailable")
}

// rejected classifies err as AdapterRejected.
func rejected(op string, err error) error {
	return apperr.Wrap(apperr.AdapterRejected, op, err, "inference service rejected the request")
}

// contextFailure reports whether err comes from the caller's context ending.
func contextFailure(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// IsTransient reports whether a failed call may succeed if repeated.
func IsTransient(err error) bool {
	return apperr.KindOf(err) == apperr.AdapterUnavailable && !contextFailure(err)
}
