// Package apperr defines the error kinds surfaced by the scoring pipeline.
//
// Every failure of an add operation carries exactly one Kind so callers can
// tell whether the input, the upstream service, or the reply shape is at fault.
// A Kind is itself an error, which makes errors.Is work on wrapped values:
//
//	if errors.Is(err, apperr.CardinalityMismatch) { ... }
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// Unknown is the kind of errors that did not originate in this module.
	Unknown Kind = iota
	// InvalidInput means an empty or blank link was submitted.
	InvalidInput
	// AdapterUnavailable means the inference service could not be reached,
	// failed at the transport level, or did not answer in time.
	AdapterUnavailable
	// AdapterRejected means the inference service answered with an
	// application-level error.
	AdapterRejected
	// MalformedReply means the reply text is not a well-formed record list.
	MalformedReply
	// CardinalityMismatch means the reply record count differs from the
	// number of links submitted.
	CardinalityMismatch
	// DegenerateScoreSet means the median score is zero.
	DegenerateScoreSet
)

// String returns the snake_case name used on the wire.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case AdapterUnavailable:
		return "adapter_unavailable"
	case AdapterRejected:
		return "adapter_rejected"
	case MalformedReply:
		return "malformed_reply"
	case CardinalityMismatch:
		return "cardinality_mismatch"
	case DegenerateScoreSet:
		return "degenerate_score_set"
	default:
		return "unknown"
	}
}

// Error implements error so a bare Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "reply.Parse".
	Op  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns an Error of kind k with a formatted message.
func New(k Kind, op, format string, args ...any) *Error {
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err as kind k. A nil err yields nil.
func Wrap(k Kind, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
