package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		code  ErrorCode
		fatal bool
	}{
		{ErrCodeTemplateNotFound, true},
		{ErrCodeTemplateInvalid, true},
		{ErrCodeSkeletonInvalid, true},
		{ErrCodeUnknownSlideType, false},
		{ErrCodeMissingField, false},
		{ErrCodeImageResolutionFailed, false},
		{ErrCodeRenderFailed, false},
		{ErrCodeStoreWriteFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.code))
		})
	}
}

func TestAsStandard_UnwrapsChain(t *testing.T) {
	base := NewTemplateInvalidError("deck.json", "slide_types is required")
	wrapped := fmt.Errorf("load: %w", base)

	se, ok := AsStandard(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeTemplateInvalid, se.Code)

	_, ok = AsStandard(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreWriteFailedError("deck:1", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "STORE_WRITE_FAILED")
}

func TestConvertToBPMNError(t *testing.T) {
	se := NewRenderFailedError(3, "opening", stderrors.New("nil image"))
	bpmn := ConvertToBPMNError(se)

	assert.Equal(t, "RENDER_FAILED", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "RENDER_FAILED", vars["originalErrorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeSkeletonInvalid))
	assert.Equal(t, "SLIDE", GetErrorCategory(ErrCodeUnknownSlideType))
	assert.Equal(t, "IMAGE", GetErrorCategory(ErrCodeImageResolutionFailed))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodeStoreWriteFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputInvalid))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestSlideWarnings_LogFields(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		validate func(t *testing.T, fields map[string]interface{})
	}{
		{
			name: "unknown slide type",
			err:  NewUnknownSlideTypeError("timeline", "text_content"),
			validate: func(t *testing.T, fields map[string]interface{}) {
				assert.Equal(t, "UNKNOWN_SLIDE_TYPE", fields["code"])
				assert.Equal(t, "timeline", fields["slideType"])
				assert.Equal(t, "text_content", fields["fallback"])
			},
		},
		{
			name: "missing field",
			err:  NewMissingFieldError("full_image", "image_id"),
			validate: func(t *testing.T, fields map[string]interface{}) {
				assert.Equal(t, "MISSING_FIELD", fields["code"])
				assert.Equal(t, "image_id", fields["field"])
			},
		},
		{
			name: "image resolution with path",
			err:  NewImageResolutionError("img_02", stderrors.New("bad header")).WithMetadata("path", "/tmp/b.png"),
			validate: func(t *testing.T, fields map[string]interface{}) {
				assert.Equal(t, "IMAGE_RESOLUTION_FAILED", fields["code"])
				assert.Equal(t, "img_02", fields["imageId"])
				assert.Equal(t, "bad header", fields["error"])
				assert.Equal(t, "/tmp/b.png", fields["path"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.err.LogFields())
			assert.False(t, IsFatal(tt.err.Code))
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeStoreWriteFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInputInvalid))
	assert.False(t, IsRetryableErrorCode(ErrCodeRenderFailed))
}
