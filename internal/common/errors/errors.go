package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// Error codes
// ==========================

type ErrorCode string

const (
	// Configuration errors abort the whole run.
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateInvalid  ErrorCode = "TEMPLATE_INVALID"
	ErrCodeSkeletonInvalid  ErrorCode = "SKELETON_INVALID"

	// Slide-level errors degrade a single slide.
	ErrCodeUnknownSlideType      ErrorCode = "UNKNOWN_SLIDE_TYPE"
	ErrCodeMissingField          ErrorCode = "MISSING_FIELD"
	ErrCodeImageResolutionFailed ErrorCode = "IMAGE_RESOLUTION_FAILED"
	ErrCodeRenderFailed          ErrorCode = "RENDER_FAILED"

	ErrCodeInputInvalid     ErrorCode = "INPUT_INVALID"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

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
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// LogFields flattens the error into warning fields: its code plus metadata.
func (e *StandardError) LogFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		fields[k] = v
	}
	fields["code"] = string(e.Code)
	return fields
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// BPMN
// ==========================

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

// ==========================
// Constructors
// ==========================

func NewTemplateNotFoundError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template source not found",
		Details:   fmt.Sprintf("source: %s, error: %v", source, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTemplateInvalidError(source, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateInvalid,
		Message:   "Template document is structurally invalid",
		Details:   fmt.Sprintf("source: %s, %s", source, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSkeletonInvalidError(source, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSkeletonInvalid,
		Message:   "Deck skeleton is invalid",
		Details:   fmt.Sprintf("source: %s, %s", source, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownSlideTypeError(slideType, fallback string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSlideType,
		Message:   "Unknown slide type",
		Details:   fmt.Sprintf("slideType: %s, fallback: %s", slideType, fallback),
		Retryable: false,
		Metadata:  map[string]interface{}{"slideType": slideType, "fallback": fallback},
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingFieldError(slideType, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingField,
		Message:   "Slide record field missing",
		Details:   fmt.Sprintf("slideType: %s, field: %s", slideType, field),
		Retryable: false,
		Metadata:  map[string]interface{}{"slideType": slideType, "field": field},
		Timestamp: time.Now().UTC(),
	}
}

func NewImageResolutionError(imageID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageResolutionFailed,
		Message:   "Image could not be resolved",
		Details:   fmt.Sprintf("imageId: %s, error: %v", imageID, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"imageId": imageID, "error": err.Error()},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewRenderFailedError(index int, slideType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Slide rendering failed",
		Details:   fmt.Sprintf("index: %d, slideType: %s, error: %v", index, slideType, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"slideIndex": index, "slideType": slideType},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   "Composition input is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewStoreWriteFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Failed to persist composition output",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// Classification
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeTemplateNotFound:      "TEMPLATE_NOT_FOUND",
	ErrCodeTemplateInvalid:       "TEMPLATE_INVALID",
	ErrCodeSkeletonInvalid:       "SKELETON_INVALID",
	ErrCodeInputInvalid:          "INPUT_INVALID",
	ErrCodeStoreWriteFailed:      "STORE_WRITE_FAILED",
	ErrCodeRenderFailed:          "RENDER_FAILED",
	ErrCodeImageResolutionFailed: "IMAGE_RESOLUTION_FAILED",
}

// IsFatal reports whether an error code aborts a composition run.
func IsFatal(code ErrorCode) bool {
	switch code {
	case ErrCodeTemplateNotFound, ErrCodeTemplateInvalid, ErrCodeSkeletonInvalid, ErrCodeInputInvalid:
		return true
	default:
		return false
	}
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreWriteFailed:
		return 3
	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
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
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "SKELETON"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "SLIDE") || strings.Contains(codeStr, "FIELD") || strings.Contains(codeStr, "RENDER"):
		return "SLIDE"
	case strings.Contains(codeStr, "IMAGE"):
		return "IMAGE"
	case strings.Contains(codeStr, "STORE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// AsStandard extracts a StandardError from err, if one is wrapped inside it.
func AsStandard(err error) (*StandardError, bool) {
	for err != nil {
		if se, ok := err.(*StandardError); ok {
			return se, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
