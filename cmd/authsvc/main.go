// Command authsvc runs the auth microservice: the token lifecycle service
// consuming the auth queue over the broker.
//
// Configuration is read from flags and environment once at startup:
//
//	-redis-addr / REDIS_ADDR            broker and credential cache address
//	-queue                              auth queue name (default "auth")
//	ACCESS_TOKEN_SECRET                 access token signing secret
//	REFRESH_TOKEN_SECRET                refresh token signing secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/audit"
	"github.com/MrEthical07/authgate/endpoint"
	"github.com/MrEthical07/authgate/rpc"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		redisAddr = flag.String("redis-addr", "", "redis address; REDIS_ADDR env if empty")
		queue     = flag.String("queue", "", "auth queue name")
	)
	flag.Parse()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	cfg := authgate.DefaultConfig()
	cfg.AccessSecret = []byte(os.Getenv("ACCESS_TOKEN_SECRET"))
	cfg.RefreshSecret = []byte(os.Getenv("REFRESH_TOKEN_SECRET"))
	if *queue != "" {
		cfg.Queue = *queue
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	defer func() { _ = client.Close() }()

	dispatcher := audit.NewDispatcher(audit.Config{BufferSize: 1024, DropIfFull: true}, audit.NewJSONWriterSink(os.Stdout))
	defer dispatcher.Close()

	svc, err := authgate.NewService(cfg, client, dispatcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "service init failed: %v\n", err)
		os.Exit(1)
	}

	srv := rpc.NewServer(client, cfg.Queue)
	endpoint.New(svc).Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-srv.Ready()
		log.Printf("auth service consuming queue %q via %s", cfg.Queue, addr)
	}()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server stopped: %v\n", err)
		os.Exit(1)
	}
}
