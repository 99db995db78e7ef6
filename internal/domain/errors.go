package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeConflict     ErrorCode = "CONFLICT"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Evaluation specific errors
	CodeMalformedAnswerKey ErrorCode = "MALFORMED_ANSWER_KEY"
	CodeMissingAnswerKey   ErrorCode = "MISSING_ANSWER_KEY"
	CodeUnsupportedFormat  ErrorCode = "UNSUPPORTED_FORMAT"
	CodeBatchNotFound      ErrorCode = "BATCH_NOT_FOUND"
	CodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
)

// Sentinels for errors.Is checks. Matching is done on Code only.
var (
	ErrMalformedAnswerKey = &DomainError{Code: CodeMalformedAnswerKey, Message: "answer key could not be parsed"}
	ErrMissingAnswerKey   = &DomainError{Code: CodeMissingAnswerKey, Message: "upload the official answer key first"}
	ErrBatchNotFound      = &DomainError{Code: CodeBatchNotFound, Message: "batch not found"}
	ErrUnauthorized       = &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext attaches a detail that the error handler exposes to clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewConflictError(message string) *DomainError {
	return NewError(CodeConflict, message, nil)
}

func NewMalformedAnswerKeyError(cause error) *DomainError {
	return NewError(CodeMalformedAnswerKey, "Failed to parse official answer key", cause)
}

func NewMissingAnswerKeyError(batchID string) *DomainError {
	return NewError(CodeMissingAnswerKey, "Upload the official answer key first", nil).
		WithContext("batch_id", batchID)
}

func NewUnsupportedFormatError(filename string) *DomainError {
	return NewError(CodeUnsupportedFormat, fmt.Sprintf("Unsupported answer key file: %s", filename), nil).
		WithContext("accepted", []string{".json", ".xlsx", ".csv"})
}

func NewBatchNotFoundError(batchID string) *DomainError {
	return NewError(CodeBatchNotFound, fmt.Sprintf("Batch not found with ID: %s", batchID), nil)
}

func NewExtractionFailedError(cause error) *DomainError {
	return NewError(CodeExtractionFailed, "Failed to read answers from the OMR sheet", cause)
}
