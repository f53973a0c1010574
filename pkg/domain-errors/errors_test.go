package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("db down")
	wrapped := fmt.Errorf("load user: %w", Wrap(base, CodeInternal, "failed to load user"))

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.True(t, errors.Is(wrapped, base))
	assert.False(t, HasCode(base, CodeInternal))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "key not found")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestValidationJoinsMessages(t *testing.T) {
	err := Validation("name is required", "purpose is required")
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Equal(t, "name is required, purpose is required", MessageOf(err))
}

func TestDuplicate(t *testing.T) {
	err := Duplicate("trackingNumber")
	assert.Equal(t, CodeDuplicate, CodeOf(err))
	assert.Equal(t, "trackingNumber already exists", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}
