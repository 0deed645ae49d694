package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/authgate"
)

// Cookie names shared between the guard and the gateway auth handlers.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// Verifier resolves an access token to its principal, typically by a
// request/reply call to the auth queue.
type Verifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*authgate.Principal, error)
}

type principalContextKey struct{}

// PrincipalFromContext returns the principal the guard attached to the
// request context.
func PrincipalFromContext(ctx context.Context) (*authgate.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*authgate.Principal)
	return p, ok
}

// Guard wraps protected routes. Requests without a structurally valid
// access token are rejected with 401 before any broker round trip; the rest
// block on exactly one verification call and are rejected on any fault or
// timeout.
func Guard(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			token, ok := accessToken(r)
			if !ok {
				http.Error(w, "Access token is missing", http.StatusUnauthorized)
				return
			}
			if !looksLikeJWT(token) {
				http.Error(w, "Invalid access token format", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken reads the access-token cookie, falling back to a bearer
// Authorization header for non-browser clients.
func accessToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(CookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	const bearer = "Bearer "
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}

// looksLikeJWT is the cheap structural pre-check: three non-empty
// base64url segments. Anything else is rejected without spending a
// network round trip.
func looksLikeJWT(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, c := range part {
			if !isBase64URLChar(c) {
				return false
			}
		}
	}
	return true
}

func isBase64URLChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
