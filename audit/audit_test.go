package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONWriterSinkOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{
		Timestamp:   time.Now(),
		EventType:   EventTokenIssued,
		PrincipalID: "g1",
		Success:     true,
	})
	sink.Emit(context.Background(), Event{
		Timestamp: time.Now(),
		EventType: EventVerifyFailed,
		Error:     "invalid token",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if first.EventType != EventTokenIssued || first.PrincipalID != "g1" || !first.Success {
		t.Fatalf("unexpected event: %+v", first)
	}
}

func TestDispatcherDeliversBeforeClose(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(Config{BufferSize: 8}, NewJSONWriterSink(&buf))

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: EventTokenRotated})
	}
	d.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 events flushed on close, got %d", len(lines))
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	block := make(chan struct{})
	d := NewDispatcher(Config{BufferSize: 1, DropIfFull: true}, sinkFunc(func(context.Context, Event) {
		<-block
	}))
	defer func() {
		close(block)
		d.Close()
	}()

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: EventTokenIssued})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops under a blocked sink")
	}
}

type sinkFunc func(context.Context, Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
