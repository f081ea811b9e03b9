package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := New("validate", CodeFileTooLarge, "File too large. Maximum size is 10MB")
	assert.Equal(t, CodeFileTooLarge, CodeOf(err))

	wrapped := fmt.Errorf("handling request: %w", err)
	assert.Equal(t, CodeFileTooLarge, CodeOf(wrapped))

	assert.Equal(t, CodeInternalError, CodeOf(errors.New("boom")))
}

func TestMessageOf_HidesInternalDetails(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:443: connection refused")
	err := Wrap("recognize", CodeOCRFailed, "OCR processing failed", cause)

	assert.Equal(t, "OCR processing failed", MessageOf(err))
	assert.NotContains(t, MessageOf(err), "10.0.0.3")

	// Unknown errors get the generic message.
	assert.Equal(t, "An unexpected error occurred", MessageOf(cause))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("decode failed")
	err := Wrap("validate", CodeInvalidImage, "Invalid or corrupted image file", cause)
	require.ErrorIs(t, err, cause)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(CodeInvalidFileType))
	assert.True(t, IsValidation(CodeTooManyFiles))
	assert.False(t, IsValidation(CodeOCRFailed))
	assert.False(t, IsValidation(CodeInternalError))
}
