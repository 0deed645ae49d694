// Package endpoint exposes the token lifecycle as message-pattern handlers
// on the auth broker queue: GOOGLE_LOGIN, REFRESH_TOKEN, and
// VERIFY_ACCESS_TOKEN. Handlers are stateless adapters around
// authgate.Service; every internal error is normalized to a {status,
// message} fault before crossing the transport.
package endpoint
