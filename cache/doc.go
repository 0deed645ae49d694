// Package cache implements the Redis-backed credential cache holding the
// single currently-valid refresh token per principal.
//
// Rotation uses a Lua compare-and-swap so that concurrent rotations racing on
// the same presented token resolve to exactly one winner; the losers observe
// [ErrTokenMismatch] without ever writing.
package cache
