package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/endpoint"
	"github.com/MrEthical07/authgate/rpc"
)

// AuthClient is the gateway's handle on the auth queue. It satisfies
// middleware.Verifier. Safe for concurrent use.
type AuthClient struct {
	rpc *rpc.Client
}

// NewAuthClient wraps an RPC client pointed at the auth queue.
func NewAuthClient(client *rpc.Client) *AuthClient {
	return &AuthClient{rpc: client}
}

// VerifyAccessToken performs the blocking VERIFY_ACCESS_TOKEN round trip.
func (c *AuthClient) VerifyAccessToken(ctx context.Context, token string) (*authgate.Principal, error) {
	raw, err := c.rpc.Send(ctx, endpoint.PatternVerifyAccessToken, endpoint.VerifyRequest{
		AccessToken: token,
	})
	if err != nil {
		return nil, err
	}

	var principal authgate.Principal
	if err := json.Unmarshal(raw, &principal); err != nil {
		return nil, fmt.Errorf("%w: %v", authgate.ErrRPCTransport, err)
	}
	return &principal, nil
}

// Refresh performs the REFRESH_TOKEN round trip, exchanging the presented
// refresh token for a fresh pair.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*authgate.TokenPair, error) {
	raw, err := c.rpc.Send(ctx, endpoint.PatternRefreshToken, endpoint.RefreshRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}
	return decodePair(raw)
}

// Login performs the GOOGLE_LOGIN round trip for a principal the identity
// provider has already verified.
func (c *AuthClient) Login(ctx context.Context, principal authgate.Principal) (*authgate.TokenPair, error) {
	raw, err := c.rpc.Send(ctx, endpoint.PatternGoogleLogin, principal)
	if err != nil {
		return nil, err
	}
	return decodePair(raw)
}

func decodePair(raw json.RawMessage) (*authgate.TokenPair, error) {
	var pair authgate.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("%w: %v", authgate.ErrRPCTransport, err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("%w: incomplete token pair", authgate.ErrRPCTransport)
	}
	return &pair, nil
}
