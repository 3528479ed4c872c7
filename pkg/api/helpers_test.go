package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-s-k-zoro/gsk-man-page/pkg/api"
	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperrors.NewValidation("email is required"), http.StatusBadRequest, "email is required"},
		{"not found", apperrors.NewNotFound("node not found"), http.StatusNotFound, "node not found"},
		{"unavailable", apperrors.NewUnavailable("form endpoint down", fmt.Errorf("503")), http.StatusServiceUnavailable, "form endpoint down"},
		{"internal hides details", fmt.Errorf("disk exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			api.FromError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}
