package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is the uniform verification failure for this package.
var ErrTokenInvalid = errors.New("invalid token")

// Class selects which secret and lifetime a token is signed with.
type Class int

const (
	// ClassAccess is the short-lived credential sent on every request.
	ClassAccess Class = iota
	// ClassRefresh is the long-lived credential used solely for rotation.
	ClassRefresh
)

// Config defines the per-class secrets and lifetimes for a [Manager].
// Instances are configured during initialization and then treated as
// immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

// Manager signs and verifies tokens for both classes. Safe for concurrent
// use.
type Manager struct {
	config Config
}

// Claims is the signed payload: the principal subset plus registered
// claims. Nothing else is carried, minimizing leakage if a token is
// intercepted.
type Claims struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// NewManager validates the config and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both class secrets required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Sign mints a token of the given class for the claims payload.
func (m *Manager) Sign(id, email, displayName string, class Class) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(class))),
			IssuedAt:  jwt.NewNumericDate(now),
			// jti keeps every mint distinct even within the same second,
			// which single-use rotation depends on.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret(class))
}

// Parse verifies signature and expiry against the class secret and returns
// the claims. Any failure, whatever its cause, is [ErrTokenInvalid].
func (m *Manager) Parse(tokenStr string, class Class) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret(class), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) secret(class Class) []byte {
	if class == ClassRefresh {
		return m.config.RefreshSecret
	}
	return m.config.AccessSecret
}

func (m *Manager) ttl(class Class) time.Duration {
	if class == ClassRefresh {
		return m.config.RefreshTTL
	}
	return m.config.AccessTTL
}
