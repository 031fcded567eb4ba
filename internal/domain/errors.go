package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure the pipeline can surface. Kinds decide
// retry eligibility inside components and the HTTP status at the edge.
type Kind string

const (
	KindInvalidURL          Kind = "invalid_url"
	KindVideoUnavailable    Kind = "video_unavailable"
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindNetworkFailure      Kind = "network_failure"
	KindTimeout             Kind = "timeout"
	KindTranscriptionFailed Kind = "transcription_failed"
	KindSummarizationFailed Kind = "summarization_failed"
	KindParseFailed         Kind = "parse_failed"
	KindCancelled           Kind = "cancelled"
	KindInternal            Kind = "internal"
)

// Error is the typed failure every component returns across package
// boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a typed error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether an error is transient and eligible for a
// bounded retry at the component that detected it.
func Retryable(err error) bool {
	return KindOf(err) == KindNetworkFailure
}

// HTTPStatus maps a kind to the status returned to clients. Client-input
// errors map to 4xx, provider and transient errors to 5xx.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidURL:
		return http.StatusBadRequest
	case KindVideoUnavailable:
		return http.StatusNotFound
	case KindUnsupportedFormat:
		return http.StatusUnprocessableEntity
	case KindCancelled:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
