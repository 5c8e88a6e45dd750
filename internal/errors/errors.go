package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode classifies synthesis failures.
type ErrorCode string

const (
	// Rejected before any document mutation.
	ErrorInvalidRegion ErrorCode = "INVALID_REGION"

	// Host mutation failed while the chain was being built.
	ErrorSynthesisFailed ErrorCode = "SYNTHESIS_FAILED"

	// Cleanup of a previous generation failed. Fatal, since continuing would
	// leave two chains behind the same source slide.
	ErrorStaleChainRemovalFailed ErrorCode = "STALE_CHAIN_REMOVAL_FAILED"
)

// Error is a structured synthesis error.
type Error struct {
	Code      ErrorCode
	Stage     string
	Message   string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s[%s]", e.Code, e.Stage)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so callers can
// write errors.Is(err, &Error{Code: ErrorInvalidRegion}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Stage == "" || t.Stage == e.Stage)
}

func NewInvalidRegionError(ordinal int, width, height float64) *Error {
	return &Error{
		Code:      ErrorInvalidRegion,
		Message:   fmt.Sprintf("region %d has non-positive size %gx%g", ordinal, width, height),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"ordinal": ordinal,
			"width":   width,
			"height":  height,
		},
	}
}

// NewEmptySelectionError is an InvalidRegion raised when nothing is selected.
func NewEmptySelectionError() *Error {
	return &Error{
		Code:      ErrorInvalidRegion,
		Message:   "selection contains no shapes",
		Timestamp: time.Now(),
	}
}

// NewInvalidSelectionError is an InvalidRegion raised when the selected shape
// at ordinal cannot be used, because it is missing from the source slide or
// selected more than once.
func NewInvalidSelectionError(ordinal int, cause error) *Error {
	return &Error{
		Code:      ErrorInvalidRegion,
		Message:   fmt.Sprintf("selected shape %d is not usable", ordinal),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"ordinal": ordinal,
		},
		Cause: cause,
	}
}

func NewSynthesisFailedError(stage string, cause error) *Error {
	return &Error{
		Code:      ErrorSynthesisFailed,
		Stage:     stage,
		Message:   "host document operation failed",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewStaleChainRemovalError(index int, cause error) *Error {
	return &Error{
		Code:      ErrorStaleChainRemovalFailed,
		Message:   fmt.Sprintf("could not remove generated slide at index %d", index),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"index": index,
		},
		Cause: cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StageOf returns the stage of the first *Error in err's chain, or "".
func StageOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// ToMap flattens the error for structured logging.
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}
	if e.Stage != "" {
		result["stage"] = e.Stage
	}
	for k, v := range e.Details {
		result[k] = v
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}
