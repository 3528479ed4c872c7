package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ProfileCookie identifies a browser profile. It scopes saved node
// positions and the visitor count cache.
const ProfileCookie = "gsk_profile"

const profileMaxAge = 365 * 24 * time.Hour

type profileKey struct{}

// Profile makes sure every request carries a profile id, minting and
// setting the cookie when it is missing or malformed.
func Profile(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ProfileCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(profileMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), id)))
		})
	}
}

// WithProfile attaches a profile id to ctx.
func WithProfile(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileKey{}, id)
}

// ProfileFrom returns the profile id set by the Profile middleware.
func ProfileFrom(ctx context.Context) string {
	id, _ := ctx.Value(profileKey{}).(string)
	return id
}
