package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals empty or malformed user input.
	ErrValidation = errors.New("validation failed")
	// ErrSecurity signals a denylisted pattern, disallowed character, or unsafe SQL shape.
	ErrSecurity = errors.New("security violation")
	// ErrRateLimited signals an exhausted request quota.
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout signals that execution exceeded its budget.
	ErrTimeout = errors.New("execution timeout")
	// ErrQueryExecution is an opaque wrapper over store failures.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrLLMUnavailable signals that the language model adapter is not ready or failed.
	ErrLLMUnavailable = errors.New("llm unavailable")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// SecurityError wraps ErrSecurity with the violated rule. The rule name is
// safe to surface; Detail is recorded in the audit log only.
type SecurityError struct {
	Rule   string
	Detail string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSecurity.Error(), e.Rule)
}

func (e *SecurityError) Unwrap() error { return ErrSecurity }

// NewSecurityError creates a security error for the given rule.
func NewSecurityError(rule, detail string) error {
	return &SecurityError{Rule: rule, Detail: detail}
}

// RateLimitError wraps ErrRateLimited with the breached window for retry guidance.
type RateLimitError struct {
	Window string // "minute" or "hour"
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: per-%s quota exceeded", ErrRateLimited.Error(), e.Window)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimitError creates a rate limit error for the breached window.
func NewRateLimitError(window string) error {
	return &RateLimitError{Window: window}
}
