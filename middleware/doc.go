// Package middleware exposes the gateway-side authorization guard: an
// http.Handler wrapper that extracts the access token from the request,
// fail-fasts on structurally invalid tokens, and blocks on a broker RPC
// verification before letting the handler chain proceed.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into one Verifier call. It does NOT
// parse or create JWTs, never caches verdicts, and never retries — every
// request is freshly verified against the auth service.
package middleware
