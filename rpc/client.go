package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned when no reply arrives within the client timeout.
var ErrTimeout = errors.New("rpc reply timeout")

// ErrBrokerUnavailable wraps transport-level broker failures.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// Client issues request/reply calls against a named queue. Safe for
// concurrent use; each call carries its own correlation id and reply
// subscription.
type Client struct {
	redis   redis.UniversalClient
	queue   string
	timeout time.Duration
}

// NewClient creates a [Client] for the given queue. timeout bounds the wait
// for each reply.
func NewClient(client redis.UniversalClient, queue string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{redis: client, queue: queue, timeout: timeout}
}

// Send publishes a request for pattern and blocks until one reply, a fault,
// ctx cancellation, or the timeout. A *Fault error means the remote handler
// rejected the request; any other error is transport-level.
func (c *Client) Send(ctx context.Context, pattern string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrBrokerUnavailable, err)
	}

	id := uuid.NewString()

	// Subscribe before publishing so the reply cannot slip past us.
	sub := c.redis.Subscribe(ctx, replyChannel(id))
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("%w: subscribe: %v", ErrBrokerUnavailable, err)
	}

	env, err := json.Marshal(Envelope{Pattern: pattern, ID: id, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%w: encode envelope: %v", ErrBrokerUnavailable, err)
	}
	if err := c.redis.Publish(ctx, queueChannel(c.queue), env).Err(); err != nil {
		return nil, fmt.Errorf("%w: publish: %v", ErrBrokerUnavailable, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil, fmt.Errorf("%w: reply subscription closed", ErrBrokerUnavailable)
			}
			var reply Reply
			if err := json.Unmarshal([]byte(msg.Payload), &reply); err != nil {
				return nil, fmt.Errorf("%w: decode reply: %v", ErrBrokerUnavailable, err)
			}
			if reply.ID != "" && reply.ID != id {
				continue
			}
			if reply.Fault != nil {
				return nil, reply.Fault
			}
			return reply.Data, nil
		case <-timer.C:
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrBrokerUnavailable, ctx.Err())
		}
	}
}
