package redisbus

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(TopicAnalysisCompleted, map[string]any{"id": "abc", "trustScore": 0.5})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if ev.Topic != TopicAnalysisCompleted || ev.OccurredAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
	var data map[string]any
	if err := json.Unmarshal(ev.Data, &data); err != nil || data["id"] != "abc" {
		t.Fatalf("data: %v %v", data, err)
	}
	if _, err := NewEvent("x", make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestNewRequiresAddr(t *testing.T) {
	log, _ := logger.New("test")
	if _, _, err := New(log, Config{}, nil); err == nil {
		t.Fatalf("expected error without address")
	}
	if err := NewNop(log).Publish(context.Background(), TopicModerationDecided, nil); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}

func TestPublishIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	log, _ := logger.New("test")
	pub, rdb, err := New(log, Config{Addr: addr, Channel: "trustlens-test"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := rdb.Subscribe(ctx, "trustlens-test")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := pub.Publish(ctx, TopicAnalysisCompleted, map[string]string{"id": "1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Topic != TopicAnalysisCompleted {
		t.Fatalf("payload: %s err=%v", msg.Payload, err)
	}
}
