package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	genai "google.golang.org/genai"
)

// Op names the client operation a RequestError came from.
type Op string

const (
	OpSummarize           Op = "summarize"
	OpExtractKeyPoints    Op = "extract_key_points"
	OpSummarizePDF        Op = "summarize_pdf"
	OpExtractPDFKeyPoints Op = "extract_pdf_key_points"
)

// Kind classifies why a remote request failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindAuth
	KindQuota
	KindInvalidRequest
	KindUnavailable
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnavailable:
		return "unavailable"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ErrEmptyResponse is reported when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// RequestError is the single error type returned by Summarizer implementations.
// Error() is the message shown to the user; Kind and Unwrap carry the detail.
type RequestError struct {
	Op   Op
	Kind Kind
	Err  error
}

func (e *RequestError) Error() string {
	switch e.Op {
	case OpSummarize:
		return "Failed to summarize text. Please try again."
	case OpExtractKeyPoints:
		return "Failed to extract key points. Please try again."
	case OpSummarizePDF:
		return "Failed to summarize PDF content. Please try again."
	case OpExtractPDFKeyPoints:
		return "Failed to extract key points from PDF. Please try again."
	default:
		return "Request failed. Please try again."
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Detail is the underlying cause, for logs.
func (e *RequestError) Detail() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Retryable reports whether re-sending the same request could succeed.
// Nothing in this module retries on its own.
func (e *RequestError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindQuota, KindUnavailable:
		return true
	}
	return false
}

func newRequestError(op Op, err error) *RequestError {
	return &RequestError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrEmptyResponse) {
		return KindMalformedResponse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Status)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Status)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	if errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindUnknown
}

func classifyStatus(code int, status string) Kind {
	switch {
	case code == http.StatusTooManyRequests || strings.EqualFold(status, "RESOURCE_EXHAUSTED"):
		return KindQuota
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindUnavailable
	case code >= 400:
		return KindInvalidRequest
	}
	return KindUnknown
}
