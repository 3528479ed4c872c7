package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
	"github.com/g-s-k-zoro/gsk-man-page/pkg/validation"
)

type sample struct {
	Name  string `validate:"required,max=5"`
	Email string `validate:"omitempty,email"`
	Kind  string `validate:"omitempty,oneof=a b"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{"valid", sample{Name: "ok"}, ""},
		{"required", sample{}, "name is required"},
		{"max", sample{Name: "toolong"}, "name must be at most 5 characters"},
		{"email and oneof", sample{Name: "x", Email: "nope", Kind: "c"}, "email must be a valid email; kind must be one of: a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, appErrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
