// Package jwt manages token signing and verification with a distinct HMAC
// secret per token class (access, refresh) and strict validation semantics
// suitable for low-latency authentication paths.
//
// Verification failure is deliberately uniform: expired, tampered, and
// malformed tokens all surface as [ErrTokenInvalid] so callers cannot be used
// as a validity oracle.
package jwt
