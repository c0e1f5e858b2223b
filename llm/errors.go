package llm

import (
	"errors"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Kind        ErrorKind
	Message     string
	StatusCode  int
	ProviderErr error // Original provider-specific error
}

// ErrorKind represents the category of error.
type ErrorKind string

const (
	// ErrorKindMissingCredential means no API key is configured. This is
	// user-actionable and detected before any network call is made.
	ErrorKindMissingCredential ErrorKind = "missing_credential"

	// ErrorKindTransportFailure covers connectivity problems and malformed
	// network responses.
	ErrorKindTransportFailure ErrorKind = "transport_failure"

	// ErrorKindProviderRejected means the provider returned a non-success
	// status. Message carries the provider's own error text when its error
	// envelope could be parsed.
	ErrorKindProviderRejected ErrorKind = "provider_rejected"

	// ErrorKindEmptyResponse means the provider returned a structurally
	// valid success body with no usable reply text.
	ErrorKindEmptyResponse ErrorKind = "empty_response"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// KindOf returns the error kind, or an empty kind for non-llm errors.
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return ""
}

// IsMissingCredential checks if an error is a missing credential error.
func IsMissingCredential(err error) bool {
	return KindOf(err) == ErrorKindMissingCredential
}

// IsTransportFailure checks if an error is a transport failure.
func IsTransportFailure(err error) bool {
	return KindOf(err) == ErrorKindTransportFailure
}

// IsProviderRejected checks if an error is a provider rejection.
func IsProviderRejected(err error) bool {
	return KindOf(err) == ErrorKindProviderRejected
}

// IsEmptyResponse checks if an error is an empty response error.
func IsEmptyResponse(err error) bool {
	return KindOf(err) == ErrorKindEmptyResponse
}

// NewMissingCredentialError creates a new missing credential error.
func NewMissingCredentialError(message string) *Error {
	return &Error{
		Kind:    ErrorKindMissingCredential,
		Message: message,
	}
}

// NewTransportFailureError creates a new transport failure error.
func NewTransportFailureError(message string, providerErr error) *Error {
	return &Error{
		Kind:        ErrorKindTransportFailure,
		Message:     message,
		ProviderErr: providerErr,
	}
}

// NewProviderRejectedError creates a new provider rejection error.
func NewProviderRejectedError(message string, statusCode int, providerErr error) *Error {
	return &Error{
		Kind:        ErrorKindProviderRejected,
		Message:     message,
		StatusCode:  statusCode,
		ProviderErr: providerErr,
	}
}

// NewEmptyResponseError creates a new empty response error.
func NewEmptyResponseError(message string) *Error {
	return &Error{
		Kind:    ErrorKindEmptyResponse,
		Message: message,
	}
}
