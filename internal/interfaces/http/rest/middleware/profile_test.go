package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	valid := uuid.NewString()

	tests := []struct {
		name   string
		cookie string
		mint   bool
	}{
		{"no cookie", "", true},
		{"malformed", "../../etc/passwd", true},
		{"valid", valid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Profile(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = ProfileFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: ProfileCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			cookies := rec.Result().Cookies()
			if !tt.mint {
				assert.Empty(t, cookies)
				assert.Equal(t, valid, seen)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, seen, cookies[0].Value)
			assert.True(t, cookies[0].Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}
