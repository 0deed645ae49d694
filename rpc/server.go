package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"
)

// HandlerFunc processes one decoded request payload. Returning a *Fault
// sends that fault verbatim; any other error is normalized to a 500 fault.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Server consumes a queue channel and dispatches each request to the
// handler registered for its pattern. Requests are processed concurrently;
// handlers must not rely on ordering between messages.
type Server struct {
	redis     redis.UniversalClient
	queue     string
	mu        sync.RWMutex
	handlers  map[string]HandlerFunc
	ready     chan struct{}
	readyOnce sync.Once
}

// NewServer creates a [Server] for the given queue.
func NewServer(client redis.UniversalClient, queue string) *Server {
	return &Server{
		redis:    client,
		queue:    queue,
		handlers: make(map[string]HandlerFunc),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the queue subscription is established and requests
// will no longer be lost.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handle registers fn for pattern. Registration must happen before [Run].
func (s *Server) Handle(pattern string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[pattern] = fn
}

func (s *Server) handler(pattern string) (HandlerFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.handlers[pattern]
	return fn, ok
}

// Run subscribes to the queue channel and serves until ctx is cancelled.
// In-flight handlers are allowed to finish before Run returns.
func (s *Server) Run(ctx context.Context) error {
	sub := s.redis.Subscribe(ctx, queueChannel(s.queue))
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("%w: subscribe: %v", ErrBrokerUnavailable, err)
	}
	s.readyOnce.Do(func() { close(s.ready) })

	var wg sync.WaitGroup
	defer wg.Wait()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("%w: queue subscription closed", ErrBrokerUnavailable)
			}
			wg.Add(1)
			go func(payload string) {
				defer wg.Done()
				s.dispatch(ctx, payload)
			}(msg.Payload)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) dispatch(ctx context.Context, payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.ID == "" {
		// Not an envelope we can answer. Drop it.
		return
	}

	fn, ok := s.handler(env.Pattern)
	if !ok {
		s.reply(ctx, env.ID, Reply{ID: env.ID, Fault: &Fault{
			Status:  http.StatusNotFound,
			Message: "unknown message pattern",
		}})
		return
	}

	result, err := s.call(ctx, fn, env.Data)
	if err != nil {
		s.reply(ctx, env.ID, Reply{ID: env.ID, Fault: normalizeFault(err)})
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		s.reply(ctx, env.ID, Reply{ID: env.ID, Fault: &Fault{
			Status:  http.StatusInternalServerError,
			Message: "reply encoding failed",
		}})
		return
	}
	s.reply(ctx, env.ID, Reply{ID: env.ID, Data: data})
}

// call shields the consumer loop from handler panics.
func (s *Server) call(ctx context.Context, fn HandlerFunc, data json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Fault{
				Status:  http.StatusInternalServerError,
				Message: "internal handler failure",
			}
		}
	}()
	return fn(ctx, data)
}

func (s *Server) reply(ctx context.Context, id string, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	_ = s.redis.Publish(ctx, replyChannel(id), data).Err()
}

func normalizeFault(err error) *Fault {
	if fault, ok := err.(*Fault); ok {
		return fault
	}
	return &Fault{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}
}
