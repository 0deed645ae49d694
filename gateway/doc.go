// Package gateway holds the HTTP edge of the auth domain: the broker-backed
// auth client used by the guard, and the login/refresh handlers that own the
// token cookie contract. Cookies are httpOnly, rotated on every successful
// refresh, and the refresh cookie is cleared on any refresh failure to force
// a fresh login.
package gateway
