// Command gateway runs the HTTP edge: auth routes plus the guarded sample
// route, all token decisions delegated to the auth service over the broker.
//
//	-listen                  HTTP listen address (default :8080)
//	-redis-addr / REDIS_ADDR broker address
//	-queue                   auth queue name (default "auth")
//	-secure                  mark auth cookies Secure (production)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/gateway"
	"github.com/MrEthical07/authgate/rpc"
	"github.com/redis/go-redis/v9"
)

// devIdentity stands in for the identity-provider collaborator in local
// runs; real deployments wire the provider callback here.
type devIdentity struct{}

func (devIdentity) VerifyLogin(r *http.Request) (*authgate.Principal, error) {
	id := r.URL.Query().Get("id")
	if id == "" {
		return nil, errors.New("no provider handshake present")
	}
	return &authgate.Principal{
		ID:          id,
		Email:       r.URL.Query().Get("email"),
		DisplayName: r.URL.Query().Get("name"),
	}, nil
}

func main() {
	var (
		listen    = flag.String("listen", ":8080", "HTTP listen address")
		redisAddr = flag.String("redis-addr", "", "redis address; REDIS_ADDR env if empty")
		queue     = flag.String("queue", "auth", "auth queue name")
		secure    = flag.Bool("secure", false, "mark auth cookies Secure")
	)
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	defer func() { _ = client.Close() }()

	handler := &gateway.Handler{
		Auth:       gateway.NewAuthClient(rpc.NewClient(client, *queue, 5*time.Second)),
		Identity:   devIdentity{},
		Secure:     *secure,
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	server := &http.Server{
		Addr:    *listen,
		Handler: handler.Mux(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s, auth queue %q via %s", *listen, *queue, addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "gateway stopped: %v\n", err)
		os.Exit(1)
	}
}
