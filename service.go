package authgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/authgate/audit"
	"github.com/MrEthical07/authgate/cache"
	"github.com/MrEthical07/authgate/jwt"
	"github.com/redis/go-redis/v9"
)

// Service implements the token lifecycle: issuance of signed pairs, access
// token verification, and refresh rotation against the credential cache.
// Safe for concurrent use.
type Service struct {
	config Config
	tokens *jwt.Manager
	store  *cache.Store
	audit  audit.Sink
}

// NewService validates cfg (applying defaults for zero fields) and builds a
// [Service] on the given Redis client. sink may be nil to disable auditing.
func NewService(cfg Config, client redis.UniversalClient, sink audit.Sink) (*Service, error) {
	cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if sink == nil {
		sink = audit.NoOpSink{}
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		config: cfg,
		tokens: tokens,
		store:  cache.NewStore(client, cfg.CacheKeyPrefix),
		audit:  sink,
	}, nil
}

// Issue mints an access/refresh pair for the principal and records the
// refresh token as the principal's single live credential. The cache write
// happens after both tokens sign and is awaited before returning, so a
// caller never holds an access token whose refresh token is not cached.
func (s *Service) Issue(ctx context.Context, principal Principal) (*TokenPair, error) {
	if err := principal.Validate(); err != nil {
		s.emit(ctx, audit.EventPrincipalRejected, principal.ID, err)
		return nil, err
	}

	pair, err := s.signPair(principal)
	if err != nil {
		s.emit(ctx, audit.EventIssuanceFailed, principal.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	if err := s.store.Put(ctx, principal.ID, pair.RefreshToken, s.config.RefreshTTL); err != nil {
		s.emit(ctx, audit.EventIssuanceFailed, principal.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	s.emitSuccess(ctx, audit.EventTokenIssued, principal.ID)
	return pair, nil
}

// Verify validates an access token and returns its principal claims.
// Failure is uniformly [ErrTokenInvalid]; the cache is never consulted.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.tokens.Parse(accessToken, jwt.ClassAccess)
	if err != nil {
		s.emit(ctx, audit.EventVerifyFailed, "", err)
		return nil, ErrTokenInvalid
	}
	return &Principal{
		ID:          claims.ID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// Rotate exchanges a refresh token for a fresh pair, invalidating the
// presented token. Not idempotent: of N concurrent calls presenting the
// same token, exactly one succeeds; the rest see [ErrRefreshNotRecognized].
func (s *Service) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, jwt.ClassRefresh)
	if err != nil {
		s.emit(ctx, audit.EventVerifyFailed, "", err)
		return nil, ErrTokenInvalid
	}

	// Claims are trusted once signature-verified; no principal re-lookup.
	principal := Principal{
		ID:          claims.ID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}

	pair, err := s.signPair(principal)
	if err != nil {
		s.emit(ctx, audit.EventIssuanceFailed, principal.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	// Exact-match compare-and-swap: the presented token must still be the
	// cached one, and only one racing rotation can pass this gate.
	err = s.store.Swap(ctx, principal.ID, refreshToken, pair.RefreshToken, s.config.RefreshTTL)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrNotFound), errors.Is(err, cache.ErrTokenMismatch):
		s.emit(ctx, audit.EventRotationRejected, principal.ID, err)
		return nil, ErrRefreshNotRecognized
	default:
		s.emit(ctx, audit.EventIssuanceFailed, principal.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	s.emitSuccess(ctx, audit.EventTokenRotated, principal.ID)
	return pair, nil
}

// signPair signs both tokens concurrently. Signing is independent per
// class; the parallelism mirrors issuance load on the original service.
func (s *Service) signPair(principal Principal) (*TokenPair, error) {
	var (
		access, refresh       string
		accessErr, refreshErr error
		wg                    sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		access, accessErr = s.tokens.Sign(principal.ID, principal.Email, principal.DisplayName, jwt.ClassAccess)
	}()
	go func() {
		defer wg.Done()
		refresh, refreshErr = s.tokens.Sign(principal.ID, principal.Email, principal.DisplayName, jwt.ClassRefresh)
	}()
	wg.Wait()

	if accessErr != nil {
		return nil, accessErr
	}
	if refreshErr != nil {
		return nil, refreshErr
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) emit(ctx context.Context, eventType, principalID string, err error) {
	event := audit.Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		PrincipalID: principalID,
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.audit.Emit(ctx, event)
}

func (s *Service) emitSuccess(ctx context.Context, eventType, principalID string) {
	s.audit.Emit(ctx, audit.Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		PrincipalID: principalID,
		Success:     true,
	})
}
