package authgate

import (
	"errors"
	"time"
)

// Config holds the token lifecycle policy. Instances are configured once at
// startup and treated as immutable afterwards; no component reads process
// environment directly.
type Config struct {
	// AccessSecret signs and verifies access tokens. Distinct from
	// RefreshSecret so one class can never stand in for the other.
	AccessSecret []byte
	// RefreshSecret signs and verifies refresh tokens.
	RefreshSecret []byte
	// AccessTTL is the access token lifetime. Default 1 hour.
	AccessTTL time.Duration
	// RefreshTTL is the refresh token lifetime and the credential cache TTL.
	// Default 7 days.
	RefreshTTL time.Duration
	// CacheKeyPrefix namespaces credential cache keys. Default "refreshToken:".
	CacheKeyPrefix string
	// Queue names the broker queue the auth RPC endpoint listens on.
	// Default "auth".
	Queue string
	// RPCTimeout bounds the wait for a broker reply. Default 5 seconds.
	RPCTimeout time.Duration
}

// DefaultConfig returns the policy the original deployment runs with.
func DefaultConfig() Config {
	return Config{
		AccessTTL:      time.Hour,
		RefreshTTL:     7 * 24 * time.Hour,
		CacheKeyPrefix: "refreshToken:",
		Queue:          "auth",
		RPCTimeout:     5 * time.Second,
	}
}

func (c *Config) withDefaults() {
	d := DefaultConfig()
	if c.AccessTTL == 0 {
		c.AccessTTL = d.AccessTTL
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = d.RefreshTTL
	}
	if c.CacheKeyPrefix == "" {
		c.CacheKeyPrefix = d.CacheKeyPrefix
	}
	if c.Queue == "" {
		c.Queue = d.Queue
	}
	if c.RPCTimeout == 0 {
		c.RPCTimeout = d.RPCTimeout
	}
}

func (c Config) validate() error {
	if len(c.AccessSecret) == 0 {
		return errors.New("access secret required")
	}
	if len(c.RefreshSecret) == 0 {
		return errors.New("refresh secret required")
	}
	if string(c.AccessSecret) == string(c.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.RefreshTTL < c.AccessTTL {
		return errors.New("refresh TTL shorter than access TTL")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("invalid RPC timeout")
	}
	return nil
}
