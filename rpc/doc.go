// Package rpc implements request/reply messaging over Redis pub/sub: the
// asynchronous transport the auth endpoint is addressed through.
//
// A request is published on the queue channel with a correlation id; the
// caller subscribes to a per-request reply channel before publishing and
// then blocks until exactly one reply or a bounded timeout — never both, and
// never an unbounded hang when the broker drops.
//
// # Architecture boundaries
//
// This package moves envelopes; it knows nothing about tokens or principals.
// Handlers decide the payloads, and faults cross the wire as
// {status, message} regardless of the server-side error that produced them.
package rpc
