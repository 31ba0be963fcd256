// Package apierr defines the client-visible error taxonomy. Every error body is
// rendered as {"error": Code, "message": Message}.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes returned in the "error" field.
const (
	CodeInvalidTopic        = "INVALID_TOPIC"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInputTooLarge       = "INPUT_TOO_LARGE"
	CodeUpstreamFetchFailed = "UPSTREAM_FETCH_FAILED"
	CodeAIProviderError     = "AI_PROVIDER_ERROR"
	CodeAIProviderTimeout   = "AI_PROVIDER_TIMEOUT"
	CodeRateLimited         = "RATE_LIMITED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error carries an HTTP status alongside the public code and message. Err is
// the internal cause and is never sent to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error reports the code, message and internal cause.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error { return e.Err }

// Body is the JSON error payload.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New builds an Error with an explicit status and code.
func New(status int, code, message string, cause error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: cause}
}

// InvalidTopic is a 400 for an unknown topic slug.
func InvalidTopic(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidTopic, message, nil)
}

// InvalidInput is a 400 for a malformed request body.
func InvalidInput(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, message, nil)
}

// InputTooLarge is a 413 for oversized summarization input.
func InputTooLarge(message string) *Error {
	return New(http.StatusRequestEntityTooLarge, CodeInputTooLarge, message, nil)
}

// UpstreamFetchFailed is a 502 returned when no feed could be read.
func UpstreamFetchFailed() *Error {
	return New(http.StatusBadGateway, CodeUpstreamFetchFailed, "Failed to fetch RSS from upstream sources.", nil)
}

// AIProviderError is a 502 wrapping a failed summarization call.
func AIProviderError(cause error) *Error {
	return New(http.StatusBadGateway, CodeAIProviderError, "Summarization provider failed.", cause)
}

// AIProviderTimeout is a 504 for a summarization call that ran past its deadline.
func AIProviderTimeout(cause error) *Error {
	return New(http.StatusGatewayTimeout, CodeAIProviderTimeout, "Summarization provider timed out.", cause)
}

// RateLimited is a 429 for a client over its request budget.
func RateLimited() *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Too many requests, please try later.", nil)
}

// NotFound is a 404 for unknown routes.
func NotFound() *Error {
	return New(http.StatusNotFound, CodeNotFound, "Route not found.", nil)
}

// Internal is a 500 that hides cause from the client.
func Internal(cause error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error.", cause)
}

// From maps any error onto an *Error; unknown errors become INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// BodyOf renders the public payload of e.
func BodyOf(e *Error) Body {
	return Body{Error: e.Code, Message: e.Message}
}
