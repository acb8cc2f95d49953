package commit

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies a generation failure
type Kind int

const (
	// UpstreamFailure covers network, quota, timeout and other provider errors
	UpstreamFailure Kind = iota
	MissingInput
	InvalidRequest
	MissingCredential
	UpstreamAuthFailure
	MalformedUpstreamResponse
)

const (
	MsgMissingInput     = "Either changes description or git diff is required"
	MsgInvalidRequest   = "Request body must be a JSON object"
	MsgNoJSON           = "Could not parse response from AI"
	MsgInvalidStructure = "Invalid response structure from AI"
	MsgUpstreamDefault  = "Failed to generate commit message"
	MsgUpstreamTimeout  = "The AI service did not respond in time"
)

func (k Kind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case InvalidRequest:
		return "invalid_request"
	case MissingCredential:
		return "missing_credential"
	case UpstreamAuthFailure:
		return "upstream_auth_failure"
	case MalformedUpstreamResponse:
		return "malformed_upstream_response"
	default:
		return "upstream_failure"
	}
}

// StatusCode is the HTTP status surfaced for the kind
func (k Kind) StatusCode() int {
	switch k {
	case MissingInput, InvalidRequest:
		return http.StatusBadRequest
	case UpstreamAuthFailure:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether repeating the same request may succeed
func (k Kind) Retryable() bool {
	return k == UpstreamFailure || k == MalformedUpstreamResponse
}

// GenerationError is the only error type returned by Service.Generate
type GenerationError struct {
	Kind Kind
	// Message is stable and safe to show to the caller
	Message string
	// Raw holds the upstream reply when it could not be parsed
	Raw string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusCode is the HTTP status for the error
func (e *GenerationError) StatusCode() int {
	return e.Kind.StatusCode()
}

func newError(kind Kind, message string, cause error) *GenerationError {
	return &GenerationError{Kind: kind, Message: message, Err: cause}
}

// AsGenerationError returns err as a *GenerationError, classifying anything
// else as an UpstreamFailure.
func AsGenerationError(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr
	}
	return newError(UpstreamFailure, MsgUpstreamDefault, err)
}

// KindOf returns the kind of err, UpstreamFailure for unclassified errors
func KindOf(err error) Kind {
	return AsGenerationError(err).Kind
}
