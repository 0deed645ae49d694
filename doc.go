// Package authgate implements the token lifecycle for a multi-service backend:
// dual-secret JWT issuance, refresh-token rotation backed by a Redis credential
// cache, and verification of access tokens on behalf of gateway instances.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after construction through [NewService].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Service], [Config], and the value
// types ([Principal], [TokenPair]). Signing lives in the jwt sub-package, the
// credential cache in cache, and the broker request/reply fabric in rpc. The
// endpoint package binds Service operations to broker message patterns; the
// middleware and gateway packages consume those patterns from the HTTP edge.
//
// # What this package must NOT do
//
//   - Expose Redis clients or wire encodings in its public API.
//   - Read process environment (configuration is injected once via [Config]).
//   - Distinguish expired from tampered tokens to callers (uniform
//     [ErrTokenInvalid], no verification oracle).
package authgate
