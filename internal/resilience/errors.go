// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown            ErrorType = iota
	ErrorTypeTransient                    // Temporary network issues
	ErrorTypePermanent                    // Invalid credentials, permissions
	ErrorTypeTimeout                      // Request timeouts
	ErrorTypeRateLimit                    // Remote rate limiting
	ErrorTypeServiceUnavailable           // Service downtime, 5xx responses
	ErrorTypeInvalidInput                 // Rejected request payload
	ErrorTypeResourceNotFound             // Wrong endpoint
	ErrorTypeCanceled                     // Caller gave up
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeServiceUnavailable:
		return "service_unavailable"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeResourceNotFound:
		return "not_found"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("error_type_%d", int(et))
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// StatusError is a non-2xx answer from a remote service.
type StatusError struct {
	Service    string
	StatusCode int
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode))
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var status *StatusError
	if errors.As(err, &status) {
		return classifyStatus(err, status.StatusCode)
	}

	if errors.Is(err, context.Canceled) {
		return &ClassifiedError{Original: err, Type: ErrorTypeCanceled, Retryable: false}
	}

	if isTimeoutError(err) {
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("timeout: %v", err),
			Retryable: true,
		}
	}

	if isNetworkError(err) {
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTransient,
			Message:   fmt.Sprintf("network error: %v", err),
			Retryable: true,
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return &ClassifiedError{Original: err, Type: ErrorTypeRateLimit, Retryable: true}
	case strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "credential"):
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent, Retryable: false}
	}

	// Default to unknown, non-retryable
	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown, Retryable: false}
}

func classifyStatus(err error, code int) *ClassifiedError {
	c := &ClassifiedError{Original: err}
	switch {
	case code == http.StatusTooManyRequests:
		c.Type, c.Retryable = ErrorTypeRateLimit, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		c.Type, c.Retryable = ErrorTypeTimeout, true
	case code >= 500:
		c.Type, c.Retryable = ErrorTypeServiceUnavailable, true
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		c.Type = ErrorTypePermanent
	case code == http.StatusNotFound:
		c.Type = ErrorTypeResourceNotFound
	case code >= 400:
		c.Type = ErrorTypeInvalidInput
	default:
		c.Type = ErrorTypeUnknown
	}
	return c
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// isTimeoutError checks if an error is timeout-related
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// NewTransientError creates a new transient error
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeTransient,
		Message:   message,
		Retryable: true,
	}
}

// NewPermanentError creates a new permanent error
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePermanent,
		Message:   message,
		Retryable: false,
	}
}
