package authgate

import "strings"

// Principal is the authenticated identity record produced by the identity
// provider and carried as the JWT payload. It is immutable once issued.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Validate checks the fixed-field schema on receipt from the identity
// provider collaborator. Payload shape is never trusted at runtime.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrPrincipalInvalid
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrPrincipalInvalid
	}
	return nil
}

// TokenPair is the result of issuance and rotation: a short-lived access
// token and the single currently-valid refresh token for the principal.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
