// Package errors provides the closed error taxonomy for the query
// pipeline and helpers for consistent wrapping and classification.
//
// Every failure that crosses a component boundary is reduced to a Kind.
// The supervisor and the error classifier only ever branch on Kind, never
// on error strings, so the taxonomy is the single contract between the
// pipeline stages and the client-facing layer.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure for user-facing handling.
type Kind int

const (
	// KindInternal is reserved for bugs. It must never be surfaced with
	// remediation hints.
	KindInternal Kind = iota
	// KindSchemaUnknown means the store rejected a reference to a label,
	// property, or relationship it does not know.
	KindSchemaUnknown
	// KindSyntax means the store reported a syntax problem in the statement.
	KindSyntax
	// KindTimeout means a deadline fired before the operation completed.
	KindTimeout
	// KindExecutorUnavailable means the graph store could not be reached.
	KindExecutorUnavailable
	// KindValidationRejected means the static validator refused the statement.
	KindValidationRejected
	// KindLLMUnavailable means the inference endpoint failed or timed out.
	KindLLMUnavailable
	// KindLLMUnparseable means the model replied but no usable payload
	// could be recovered from the text.
	KindLLMUnparseable
	// KindSessionClosed means the client went away mid-turn.
	KindSessionClosed
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSchemaUnknown:
		return "schema_unknown"
	case KindSyntax:
		return "syntax"
	case KindTimeout:
		return "timeout"
	case KindExecutorUnavailable:
		return "executor_unavailable"
	case KindValidationRejected:
		return "validation_rejected"
	case KindLLMUnavailable:
		return "llm_unavailable"
	case KindLLMUnparseable:
		return "llm_unparseable"
	case KindSessionClosed:
		return "session_closed"
	case KindInternal:
		return "internal"
	default:
		return "internal"
	}
}

// Recoverable reports whether the pipeline has a local recovery path for
// this kind (re-extraction, fallback query, or plan degradation).
func (k Kind) Recoverable() bool {
	switch k {
	case KindLLMUnparseable, KindLLMUnavailable:
		return true
	default:
		return false
	}
}

// Standard error variables for common conditions.
var (
	ErrSessionBusy    = errors.New("a message is already being processed")
	ErrSessionClosed  = errors.New("session closed")
	ErrSessionLimit   = errors.New("maximum session count reached")
	ErrNoRows         = errors.New("query returned no rows")
	ErrPromptNotFound = errors.New("prompt template not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ClassifiedError wraps an error with its kind and origin.
type ClassifiedError struct {
	Kind      Kind
	Err       error
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Wrap creates a standardized error with context following the pattern
// "component.operation: action failed: %w".
func Wrap(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, operation, action, err)
}

// WrapKind wraps an error with a kind and context.
func WrapKind(kind Kind, err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Kind:      kind,
		Err:       Wrap(err, component, operation, action),
		Component: component,
		Operation: operation,
	}
}

// New creates a classified error from a message.
func New(kind Kind, component, operation, message string) error {
	return &ClassifiedError{
		Kind:      kind,
		Err:       fmt.Errorf("%s.%s: %s", component, operation, message),
		Component: component,
		Operation: operation,
	}
}

// KindOf returns the kind of an error, classifying unlabeled errors by
// their shape. Unknown errors classify as KindInternal so that bugs are
// never dressed up with remediation hints.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionClosed) {
		return KindSessionClosed
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return KindTimeout
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "connection reset"),
		strings.Contains(errStr, "broken pipe"):
		return KindExecutorUnavailable
	default:
		return KindInternal
	}
}

// Server error fragments that indicate the statement itself was
// malformed, as opposed to referencing unknown schema. The lists mirror
// the error shapes the store actually emits.
var syntaxFragments = []string{
	"syntax error",
	"invalid input",
	"parse error",
	"unexpected token",
	"type mismatch",
	"not defined",
	"errMsg:",
}

var schemaFragments = []string{
	"unknown function",
	"unknown relationship",
	"unknown label",
	"not found",
	"no such property",
	"undefined",
}

// ClassifyServerError maps a graph-store error message onto the taxonomy.
// Text suggesting a syntax problem wins over schema hints because the
// store reports undefined variables through its parser.
func ClassifyServerError(message string) Kind {
	lower := strings.ToLower(message)
	for _, frag := range syntaxFragments {
		if strings.Contains(lower, strings.ToLower(frag)) {
			return KindSyntax
		}
	}
	for _, frag := range schemaFragments {
		if strings.Contains(lower, frag) {
			return KindSchemaUnknown
		}
	}
	return KindSchemaUnknown
}

// UserMessage returns the plain-language message shown to the client for
// a kind. Debug detail is attached separately and never appears here.
func UserMessage(k Kind) string {
	switch k {
	case KindSchemaUnknown:
		return "Your question referenced something the knowledge graph doesn't know about."
	case KindSyntax:
		return "The generated query had a syntax problem and could not be run."
	case KindTimeout:
		return "The query took too long to execute. Try a simpler question or add more specific filters."
	case KindExecutorUnavailable:
		return "The graph database is temporarily unavailable. Please try again in a moment."
	case KindValidationRejected:
		return "The generated query failed safety validation and was not executed."
	case KindLLMUnavailable:
		return "The AI service is temporarily unavailable. Please try again in a moment."
	case KindLLMUnparseable:
		return "The AI response could not be understood. Please try rephrasing your question."
	case KindSessionClosed:
		return "The session was closed before the answer could be delivered."
	default:
		return "Something went wrong. Please try again."
	}
}
