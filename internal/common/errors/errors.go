// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileFetchFailed    ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeProfileNotFound       ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileQueryTimeout   ErrorCode = "PROFILE_QUERY_TIMEOUT"
	ErrCodeCollegeNotFound       ErrorCode = "COLLEGE_NOT_FOUND"
	ErrCodeCatalogLoadFailed     ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogRowInvalid     ErrorCode = "CATALOG_ROW_INVALID"
	ErrCodeScoringInputInvalid   ErrorCode = "SCORING_INPUT_INVALID"
	ErrCodeActivityRatingFailed  ErrorCode = "ACTIVITY_RATING_FAILED"
	ErrCodeActivityRatingTimeout ErrorCode = "ACTIVITY_RATING_TIMEOUT"
	ErrCodeCacheUnavailable      ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewProfileFetchFailedError creates a retryable database error.
func NewProfileFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileFetchFailed,
		Message:   "Database error while loading student profile",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable missing-profile error.
func NewProfileNotFoundError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Student profile not found",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileQueryTimeoutError creates a retryable query timeout error.
func NewProfileQueryTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileQueryTimeout,
		Message:   "Student profile query timeout",
		Details:   "query exceeded the worker timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollegeNotFoundError creates a non-retryable catalog miss error.
func NewCollegeNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollegeNotFound,
		Message:   "College not found in catalog",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError creates a retryable catalog read error.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Failed to load college catalog",
		Details:   fmt.Sprintf("%s: %v", source, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringInputInvalidError creates a non-retryable payload error.
func NewScoringInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringInputInvalid,
		Message:   "Scoring input failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityRatingFailedError creates a retryable GenAI error. Note that the
// student rater itself never surfaces this: it substitutes the neutral rating
// and keeps going. The constructor exists for logging and metrics paths.
func NewActivityRatingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityRatingFailed,
		Message:   "Activity strength rating API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityRatingTimeoutError creates a retryable GenAI timeout error.
func NewActivityRatingTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityRatingTimeout,
		Message:   "Activity strength rating timeout",
		Details:   "GenAI call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical
// by convention, kept explicit so workflow models stay greppable).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileFetchFailed:    "PROFILE_FETCH_FAILED",
	ErrCodeProfileNotFound:       "PROFILE_NOT_FOUND",
	ErrCodeProfileQueryTimeout:   "PROFILE_QUERY_TIMEOUT",
	ErrCodeCollegeNotFound:       "COLLEGE_NOT_FOUND",
	ErrCodeCatalogLoadFailed:     "CATALOG_LOAD_FAILED",
	ErrCodeCatalogRowInvalid:     "CATALOG_ROW_INVALID",
	ErrCodeScoringInputInvalid:   "SCORING_INPUT_INVALID",
	ErrCodeActivityRatingFailed:  "ACTIVITY_RATING_FAILED",
	ErrCodeActivityRatingTimeout: "ACTIVITY_RATING_TIMEOUT",
	ErrCodeCacheUnavailable:      "CACHE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileFetchFailed,
		ErrCodeCatalogLoadFailed,
		ErrCodeActivityRatingFailed:
		return 3 // Retryable technical errors

	case ErrCodeProfileQueryTimeout,
		ErrCodeActivityRatingTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeCacheUnavailable:
		return 1 // Cache misses degrade gracefully anyway

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "COLLEGE"):
		return "CATALOG"
	case strings.Contains(codeStr, "ACTIVITY"):
		return "AI"
	case strings.Contains(codeStr, "SCORING") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
