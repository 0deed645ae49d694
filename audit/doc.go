// Package audit records token lifecycle events (issuance, rotation,
// verification failures) through a pluggable sink. The JSON writer sink
// emits one object per line; the dispatcher decouples emission from the
// request path with a buffered worker.
package audit
