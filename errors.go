package authgate

import "errors"

var (
	// ErrTokenIssuance is returned when signing either token or persisting the
	// refresh token fails. No partial pair is ever surfaced alongside it.
	ErrTokenIssuance = errors.New("token issuance failed")
	// ErrTokenInvalid is the uniform verification failure: bad signature,
	// expired, or malformed. Callers must re-authenticate.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRefreshNotRecognized is returned when a refresh token verifies but is
	// no longer the cached token for its principal. Distinct from
	// [ErrTokenInvalid] so the gateway can prompt a fresh login instead of a
	// retry.
	ErrRefreshNotRecognized = errors.New("refresh token not recognized")
	// ErrPrincipalInvalid is returned when a principal record fails schema
	// validation on receipt from the identity provider.
	ErrPrincipalInvalid = errors.New("invalid principal record")
	// ErrRPCTransport is returned when the broker is unreachable or a reply
	// does not arrive within the configured timeout.
	ErrRPCTransport = errors.New("rpc transport failure")
)
