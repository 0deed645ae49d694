package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/rpc"
)

// Message patterns exposed on the auth queue. The names are the wire
// contract shared with every gateway instance.
const (
	PatternGoogleLogin       = "GOOGLE_LOGIN"
	PatternRefreshToken      = "REFRESH_TOKEN"
	PatternVerifyAccessToken = "VERIFY_ACCESS_TOKEN"
)

// VerifyRequest is the VERIFY_ACCESS_TOKEN input shape.
type VerifyRequest struct {
	AccessToken string `json:"accessToken"`
}

// RefreshRequest is the REFRESH_TOKEN input shape.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Endpoint binds Service operations to broker patterns.
type Endpoint struct {
	service *authgate.Service
}

// New returns an [Endpoint] for the given service.
func New(service *authgate.Service) *Endpoint {
	return &Endpoint{service: service}
}

// Register installs the three auth patterns on srv.
func (e *Endpoint) Register(srv *rpc.Server) {
	srv.Handle(PatternGoogleLogin, e.handleLogin)
	srv.Handle(PatternRefreshToken, e.handleRefresh)
	srv.Handle(PatternVerifyAccessToken, e.handleVerify)
}

func (e *Endpoint) handleLogin(ctx context.Context, data json.RawMessage) (any, error) {
	var principal authgate.Principal
	if err := json.Unmarshal(data, &principal); err != nil {
		return nil, unauthorized("Invalid login payload")
	}

	pair, err := e.service.Issue(ctx, principal)
	if err != nil {
		return nil, toFault(err)
	}
	return pair, nil
}

func (e *Endpoint) handleRefresh(ctx context.Context, data json.RawMessage) (any, error) {
	var req RefreshRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RefreshToken == "" {
		return nil, unauthorized("Invalid refresh token")
	}

	pair, err := e.service.Rotate(ctx, req.RefreshToken)
	if err != nil {
		return nil, toFault(err)
	}
	return pair, nil
}

func (e *Endpoint) handleVerify(ctx context.Context, data json.RawMessage) (any, error) {
	var req VerifyRequest
	if err := json.Unmarshal(data, &req); err != nil || req.AccessToken == "" {
		return nil, unauthorized("Invalid access token")
	}

	principal, err := e.service.Verify(ctx, req.AccessToken)
	if err != nil {
		return nil, toFault(err)
	}
	return principal, nil
}

// toFault maps the error taxonomy onto wire faults. The gateway maps
// Status straight to an HTTP response; it never sees the sentinels.
func toFault(err error) *rpc.Fault {
	switch {
	case errors.Is(err, authgate.ErrTokenInvalid):
		return unauthorized("Invalid token")
	case errors.Is(err, authgate.ErrRefreshNotRecognized):
		return unauthorized("Refresh token not recognized, please login again")
	case errors.Is(err, authgate.ErrPrincipalInvalid):
		return unauthorized("Invalid principal record")
	case errors.Is(err, authgate.ErrTokenIssuance):
		return unauthorized("Failed to generate JWT token")
	default:
		return &rpc.Fault{Status: http.StatusInternalServerError, Message: "Internal Server Error"}
	}
}

func unauthorized(message string) *rpc.Fault {
	return &rpc.Fault{Status: http.StatusUnauthorized, Message: message}
}
