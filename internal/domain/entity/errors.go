package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized    = errors.New("browser session not initialized")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidURL        = errors.New("invalid url")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrStatusAlreadySet  = errors.New("run status already set")
	ErrInvalidRunRequest = errors.New("invalid run request")
	ErrElementNotFound   = errors.New("element not found")
)

// ActionExecutionError reports a browser action that could not be carried
// out. The orchestrator records it on the step and keeps exploring.
type ActionExecutionError struct {
	Action   ActionType
	Selector string
	Err      error
}

func (e *ActionExecutionError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s failed for selector %q: %v", e.Action, e.Selector, e.Err)
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Err
}

// MalformedPolicyResponseError means no JSON object could be recovered from
// the model reply.
type MalformedPolicyResponseError struct {
	Raw string
	Err error
}

func (e *MalformedPolicyResponseError) Error() string {
	return fmt.Sprintf("malformed policy response: %v", e.Err)
}

func (e *MalformedPolicyResponseError) Unwrap() error {
	return e.Err
}

// PolicyValidationError means the reply parsed but violates the response
// contract.
type PolicyValidationError struct {
	Field  string
	Reason string
}

func (e *PolicyValidationError) Error() string {
	return fmt.Sprintf("invalid policy response: %s: %s", e.Field, e.Reason)
}
