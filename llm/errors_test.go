package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindPredicates(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{NewMissingCredentialError("no key"), ErrorKindMissingCredential},
		{NewTransportFailureError("down", errors.New("dial tcp")), ErrorKindTransportFailure},
		{NewProviderRejectedError("rate limited", 429, nil), ErrorKindProviderRejected},
		{NewEmptyResponseError("no content"), ErrorKindEmptyResponse},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Errorf("KindOf(%v) = %q, expected %q", tc.err, got, tc.kind)
		}
	}

	if !IsMissingCredential(NewMissingCredentialError("no key")) {
		t.Error("Expected IsMissingCredential to return true")
	}
	if IsMissingCredential(NewEmptyResponseError("no content")) {
		t.Error("Expected IsMissingCredential to return false for other kinds")
	}
	if !IsTransportFailure(NewTransportFailureError("down", nil)) {
		t.Error("Expected IsTransportFailure to return true")
	}
	if !IsProviderRejected(NewProviderRejectedError("nope", 500, nil)) {
		t.Error("Expected IsProviderRejected to return true")
	}
	if !IsEmptyResponse(NewEmptyResponseError("no content")) {
		t.Error("Expected IsEmptyResponse to return true")
	}
}

func TestPredicatesOnPlainErrors(t *testing.T) {
	plain := errors.New("some error")
	if IsMissingCredential(plain) || IsTransportFailure(plain) || IsProviderRejected(plain) || IsEmptyResponse(plain) {
		t.Error("Predicates should be false for non-llm errors")
	}
	if KindOf(plain) != "" {
		t.Errorf("KindOf(plain) = %q, expected empty", KindOf(plain))
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportFailureError("network error", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if err.Error() != "network error: connection refused" {
		t.Errorf("Unexpected error text: %q", err.Error())
	}

	// Predicates see through further wrapping.
	wrapped := fmt.Errorf("submit: %w", err)
	if !IsTransportFailure(wrapped) {
		t.Error("Expected IsTransportFailure through fmt.Errorf wrapping")
	}
}
