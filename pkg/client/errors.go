package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Common errors returned by the transport. Callers distinguish outcomes with
// errors.Is against these sentinels.
var (
	// ErrCaptchaRequired is returned when the upstream served a captcha
	// challenge. Terminal: never retried.
	ErrCaptchaRequired = errors.New("captcha challenge detected")

	// ErrTimeout is returned when all attempts were exhausted on timeouts.
	ErrTimeout = errors.New("request timed out")

	// ErrUpstreamUnavailable is returned when all attempts were exhausted on
	// network errors, 5xx or 429 responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrContextCancelled is returned when the caller's context is cancelled
	// while waiting between attempts.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents connection-level failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents per-call timeouts.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassCaptcha represents captcha challenge pages.
	ErrorClassCaptcha ErrorClass = "captcha"
)

// UpstreamError carries the status and classification of a failed upstream
// response.
type UpstreamError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// classifyError categorizes a transport-level failure.
func classifyError(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 500:
		return ErrorClassServer
	case statusCode >= 400:
		return ErrorClassClient
	default:
		return ""
	}
}

// shouldRetry reports whether an error class is transient. Data-shape and
// challenge conditions are never retried.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassNetwork, ErrorClassTimeout, ErrorClassServer, ErrorClassRateLimit:
		return true
	default:
		return false
	}
}
