package rpc

import (
	"encoding/json"
	"fmt"
)

// Envelope is the request wire shape published on the queue channel.
type Envelope struct {
	Pattern string          `json:"pattern"`
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
}

// Reply is the response wire shape published on the per-request reply
// channel. Exactly one of Data or Fault is set.
type Reply struct {
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Fault *Fault          `json:"fault,omitempty"`
}

// Fault is the normalized error crossing the transport. Callers map Status
// straight to an HTTP status; they never see server-side error subtypes.
type Fault struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("rpc fault %d: %s", f.Status, f.Message)
}

func queueChannel(queue string) string {
	return "rpc:queue:" + queue
}

func replyChannel(id string) string {
	return "rpc:reply:" + id
}
