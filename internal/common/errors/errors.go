// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeGuardrailViolation    ErrorCode = "GUARDRAIL_VIOLATION"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeProviderUnavailable   ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeRetrievalUnavailable  ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeMarketDataUnavailable ErrorCode = "MARKET_DATA_UNAVAILABLE"
	ErrCodeGenerationFailed      ErrorCode = "GENERATION_FAILED"
	ErrCodePersistenceFailed     ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeNotificationFailed    ErrorCode = "NOTIFICATION_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any StandardError carrying the same code, so callers can write
// errors.Is(err, errors.ErrInvalidInput).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput          = &StandardError{Code: ErrCodeInvalidInput}
	ErrGuardrailViolation    = &StandardError{Code: ErrCodeGuardrailViolation}
	ErrNotFound              = &StandardError{Code: ErrCodeNotFound}
	ErrProviderUnavailable   = &StandardError{Code: ErrCodeProviderUnavailable}
	ErrRetrievalUnavailable  = &StandardError{Code: ErrCodeRetrievalUnavailable}
	ErrMarketDataUnavailable = &StandardError{Code: ErrCodeMarketDataUnavailable}
	ErrGenerationFailed      = &StandardError{Code: ErrCodeGenerationFailed}
	ErrPersistenceFailed     = &StandardError{Code: ErrCodePersistenceFailed}
)

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

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewInvalidInputError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewGuardrailViolationError carries the safe text that replaces the response.
func NewGuardrailViolationError(topic, safeText string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuardrailViolation,
		Message:   safeText,
		Details:   fmt.Sprintf("topic: %s", topic),
		Retryable: false,
		Metadata:  map[string]interface{}{"topic": topic},
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   fmt.Sprintf("Provider '%s' unavailable", provider),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewRetrievalUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalUnavailable,
		Message:   "Knowledge retrieval unavailable",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewMarketDataUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarketDataUnavailable,
		Message:   "Market data unavailable",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Language model generation failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPersistenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persistence operation failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AsStandard unwraps err into a StandardError, or wraps it as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:          "INVALID_INPUT",
	ErrCodeGuardrailViolation:    "GUARDRAIL_VIOLATION",
	ErrCodeNotFound:              "NOT_FOUND",
	ErrCodeProviderUnavailable:   "PROVIDER_UNAVAILABLE",
	ErrCodeRetrievalUnavailable:  "RETRIEVAL_UNAVAILABLE",
	ErrCodeMarketDataUnavailable: "MARKET_DATA_UNAVAILABLE",
	ErrCodeGenerationFailed:      "GENERATION_FAILED",
	ErrCodePersistenceFailed:     "PERSISTENCE_FAILED",
	ErrCodeNotificationFailed:    "NOTIFICATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeNotificationFailed:
		return 3
	case ErrCodeProviderUnavailable,
		ErrCodeRetrievalUnavailable,
		ErrCodeMarketDataUnavailable:
		return 2
	case ErrCodeGenerationFailed:
		return 1
	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
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

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GUARDRAIL"):
		return "POLICY"
	case strings.Contains(codeStr, "UNAVAILABLE") || strings.Contains(codeStr, "GENERATION"):
		return "PROVIDER"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "NOTIFICATION"):
		return "INTEGRATION"
	default:
		return "OTHER"
	}
}
