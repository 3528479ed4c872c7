package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

func TestWrap_PreservesType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType apperrors.ErrorType
	}{
		{"validation", apperrors.NewValidation("bad x"), apperrors.ErrorTypeValidation},
		{"not found", apperrors.NewNotFound("no node"), apperrors.ErrorTypeNotFound},
		{"configuration", apperrors.NewConfiguration("dangling link"), apperrors.ErrorTypeConfiguration},
		{"unavailable", apperrors.NewUnavailable("counter down", fmt.Errorf("dial")), apperrors.ErrorTypeUnavailable},
		{"foreign", fmt.Errorf("boom"), apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := apperrors.Wrap(tt.err, "context")
			assert.Equal(t, tt.wantType, apperrors.TypeOf(wrapped))
			assert.Contains(t, wrapped.Error(), "context")
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, apperrors.Wrap(nil, "anything"))
}

func TestIsHelpers_SeeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperrors.NewNotFound("node"))

	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsUnavailable(err))
}
