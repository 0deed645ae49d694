package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/rpc"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestStack wires service, endpoint, rpc server, and client over one
// miniredis: the full auth-queue loop a gateway instance sees.
func newTestStack(t *testing.T) (*rpc.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authgate.DefaultConfig()
	cfg.AccessSecret = []byte("access-secret-for-tests")
	cfg.RefreshSecret = []byte("refresh-secret-for-tests")

	svc, err := authgate.NewService(cfg, rdb, nil)
	if err != nil {
		t.Fatalf("service construction failed: %v", err)
	}

	srv := rpc.NewServer(rdb, cfg.Queue)
	New(svc).Register(srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("rpc server did not become ready")
	}

	return rpc.NewClient(rdb, cfg.Queue, 2*time.Second), mr
}

func login(t *testing.T, client *rpc.Client) authgate.TokenPair {
	t.Helper()

	raw, err := client.Send(context.Background(), PatternGoogleLogin, authgate.Principal{
		ID:          "g1",
		Email:       "a@b.com",
		DisplayName: "A",
	})
	if err != nil {
		t.Fatalf("login call failed: %v", err)
	}

	var pair authgate.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		t.Fatalf("decode pair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete pair: %+v", pair)
	}
	return pair
}

func TestLoginIssuesPairOverWire(t *testing.T) {
	client, mr := newTestStack(t)

	pair := login(t, client)

	cached, err := mr.Get("refreshToken:g1")
	if err != nil {
		t.Fatalf("cache entry missing: %v", err)
	}
	if cached != pair.RefreshToken {
		t.Fatal("cache does not hold the issued refresh token")
	}
}

func TestVerifyOverWire(t *testing.T) {
	client, _ := newTestStack(t)
	pair := login(t, client)

	raw, err := client.Send(context.Background(), PatternVerifyAccessToken, VerifyRequest{
		AccessToken: pair.AccessToken,
	})
	if err != nil {
		t.Fatalf("verify call failed: %v", err)
	}

	var principal authgate.Principal
	if err := json.Unmarshal(raw, &principal); err != nil {
		t.Fatalf("decode principal failed: %v", err)
	}
	if principal.ID != "g1" || principal.Email != "a@b.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestVerifyFaultsOnGarbage(t *testing.T) {
	client, _ := newTestStack(t)
	login(t, client)

	_, err := client.Send(context.Background(), PatternVerifyAccessToken, VerifyRequest{
		AccessToken: "not-a-token",
	})

	var fault *rpc.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 fault, got %d", fault.Status)
	}
}

func TestRefreshOverWire(t *testing.T) {
	client, _ := newTestStack(t)
	pair := login(t, client)

	raw, err := client.Send(context.Background(), PatternRefreshToken, RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh call failed: %v", err)
	}

	var next authgate.TokenPair
	if err := json.Unmarshal(raw, &next); err != nil {
		t.Fatalf("decode pair failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("rotation returned the presented token")
	}

	// The consumed token now faults with 401.
	_, err = client.Send(context.Background(), PatternRefreshToken, RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})
	var fault *rpc.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault on replay, got %v", err)
	}
	if fault.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 fault, got %d", fault.Status)
	}
}

func TestLoginFaultsOnInvalidPrincipal(t *testing.T) {
	client, _ := newTestStack(t)

	_, err := client.Send(context.Background(), PatternGoogleLogin, authgate.Principal{
		Email: "a@b.com",
	})

	var fault *rpc.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 fault, got %d", fault.Status)
	}
}

func TestRefreshFaultsOnEmptyPayload(t *testing.T) {
	client, _ := newTestStack(t)

	_, err := client.Send(context.Background(), PatternRefreshToken, RefreshRequest{})

	var fault *rpc.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 fault, got %d", fault.Status)
	}
}
