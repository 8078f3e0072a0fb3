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
	ErrCodeInvalidCoachProfile ErrorCode = "INVALID_COACH_PROFILE"
	ErrCodeInvalidPreferences  ErrorCode = "INVALID_PREFERENCES"
	ErrCodeCoachNotFound       ErrorCode = "COACH_NOT_FOUND"
	ErrCodeProfileLookupFailed ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeParseError          ErrorCode = "PARSE_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeSubscriptionInvalid     ErrorCode = "SUBSCRIPTION_INVALID"
	ErrCodeSubscriptionExpired     ErrorCode = "SUBSCRIPTION_EXPIRED"
	ErrCodeSubscriptionCheckFailed ErrorCode = "SUBSCRIPTION_CHECK_FAILED"

	ErrCodeReviewTokenInvalid     ErrorCode = "REVIEW_TOKEN_INVALID"
	ErrCodeReviewTokenStoreFailed ErrorCode = "REVIEW_TOKEN_STORE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to Metadata and returns e.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	if details == "" && cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: GetRetryCount(code) > 0,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
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

// ToErrorVariables returns the process variables set alongside a thrown or failed job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := make(map[string]interface{}, len(e.ErrorVariables)+4)
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	vars["errorCode"] = e.Code
	vars["errorMessage"] = e.Message
	vars["errorDetails"] = e.Details
	vars["retryable"] = e.Retryable
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewInvalidCoachProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidCoachProfile, "Coach profile failed validation", details, nil)
}

func NewInvalidPreferencesError(details string) *StandardError {
	return newError(ErrCodeInvalidPreferences, "Client preferences failed validation", details, nil)
}

func NewCoachNotFoundError(coachID string) *StandardError {
	return newError(ErrCodeCoachNotFound, "Coach not found", coachID, nil).
		WithMetadata("coachId", coachID)
}

func NewProfileLookupFailedError(err error) *StandardError {
	return newError(ErrCodeProfileLookupFailed, "Failed to load coach profile", "", err)
}

func NewParseError(details string) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", details, nil)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Coach search failed", "", err)
}

func NewSearchTimeoutError(err error) *StandardError {
	return newError(ErrCodeSearchTimeout, "Coach search timed out", "", err)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Search index not found", indexName, nil)
}

// NewSubscriptionInvalidError creates a non-retryable subscription error.
func NewSubscriptionInvalidError(details string) *StandardError {
	return newError(ErrCodeSubscriptionInvalid, "Invalid or not found subscription", details, nil)
}

// NewSubscriptionExpiredError creates a non-retryable subscription error.
func NewSubscriptionExpiredError(details string) *StandardError {
	return newError(ErrCodeSubscriptionExpired, "Subscription has expired", details, nil)
}

func NewSubscriptionCheckFailedError(err error) *StandardError {
	return newError(ErrCodeSubscriptionCheckFailed, "Failed to check subscription", "", err)
}

func NewReviewTokenInvalidError(details string) *StandardError {
	return newError(ErrCodeReviewTokenInvalid, "Review token request is invalid", details, nil)
}

func NewReviewTokenStoreFailedError(err error) *StandardError {
	return newError(ErrCodeReviewTokenStoreFailed, "Review token store unavailable", "", err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send notification", "", err).
		WithMetadata("channel", channel)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary events.
// Most are identical; lookup failures share one boundary event.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidCoachProfile:     "INVALID_INPUT",
	ErrCodeInvalidPreferences:      "INVALID_INPUT",
	ErrCodeParseError:              "INVALID_INPUT",
	ErrCodeCoachNotFound:           "COACH_NOT_FOUND",
	ErrCodeProfileLookupFailed:     "PROFILE_LOOKUP_FAILED",
	ErrCodeSearchQueryFailed:       "SEARCH_FAILED",
	ErrCodeSearchTimeout:           "SEARCH_FAILED",
	ErrCodeIndexNotFound:           "SEARCH_FAILED",
	ErrCodeSubscriptionInvalid:     "SUBSCRIPTION_INVALID",
	ErrCodeSubscriptionExpired:     "SUBSCRIPTION_EXPIRED",
	ErrCodeSubscriptionCheckFailed: "SUBSCRIPTION_CHECK_FAILED",
	ErrCodeReviewTokenInvalid:      "REVIEW_TOKEN_INVALID",
	ErrCodeReviewTokenStoreFailed:  "REVIEW_TOKEN_STORE_FAILED",
	ErrCodeNotificationSendFailed:  "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileLookupFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeSubscriptionCheckFailed,
		ErrCodeReviewTokenStoreFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSearchTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SUBSCRIPTION"):
		return "SUBSCRIPTION"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "REVIEW_TOKEN"):
		return "REVIEW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "COACH") || strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	default:
		return "OTHER"
	}
}
