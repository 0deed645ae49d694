package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/middleware"
)

// IdentityVerifier is the identity-provider collaborator contract: it turns
// a completed provider handshake into a verified principal record.
type IdentityVerifier interface {
	VerifyLogin(r *http.Request) (*authgate.Principal, error)
}

// Handler serves the auth routes of the gateway.
type Handler struct {
	Auth     *AuthClient
	Identity IdentityVerifier
	// Secure marks the cookies secure; set in production deployments.
	Secure bool
	// AccessTTL and RefreshTTL bound the cookie lifetimes. They mirror the
	// token policy so a cookie never outlives its credential.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Mux returns the auth route set with the guard applied to protected
// routes.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/callback", h.LoginCallback)
	mux.HandleFunc("/auth/refresh", h.Refresh)
	mux.Handle("/auth/payload-user", middleware.Guard(h.Auth)(http.HandlerFunc(h.PayloadUser)))
	return mux
}

// LoginCallback completes a provider login: the identity collaborator
// yields a principal, the auth service issues the pair, and both cookies
// are set.
func (h *Handler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	principal, err := h.Identity.VerifyLogin(r)
	if err != nil {
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	pair, err := h.Auth.Login(r.Context(), *principal)
	if err != nil {
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "login successful",
		"accessToken": pair.AccessToken,
	})
}

// Refresh exchanges the refresh cookie for a fresh pair. Any failure clears
// the refresh cookie so the client falls back to a full login.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.CookieRefreshToken)
	if err != nil || cookie.Value == "" {
		http.Error(w, "Refresh token not found", http.StatusUnauthorized)
		return
	}

	pair, err := h.Auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		http.Error(w, "Invalid refresh token, please login again.", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Token refreshed successfully",
		"accessToken": pair.AccessToken,
	})
}

// PayloadUser echoes the guard-attached principal. Must sit behind
// [middleware.Guard].
func (h *Handler) PayloadUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid access token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair *authgate.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieAccessToken,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.AccessTTL / time.Second),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieRefreshToken,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieRefreshToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
