package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opensource-agents/kestrel/internal/domain"
)

func TestPublishSubscribe(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	var received atomic.Int32
	_, err := b.Subscribe(context.Background(), domain.TopicAlert, func(ctx context.Context, msg *domain.Message) error {
		received.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := b.Publish(context.Background(), domain.TopicAlert, []byte(`{"agent_id":"A"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	deadline := time.After(time.Second)
	for received.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("message was not delivered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	if err := b.Publish(context.Background(), domain.TopicResultScored, []byte("{}")); err != nil {
		t.Errorf("publish without subscribers must not fail: %v", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewChannelBus(10)
	defer b.Close()

	var received atomic.Int32
	sub, err := b.Subscribe(context.Background(), domain.TopicAlert, func(ctx context.Context, msg *domain.Message) error {
		received.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if sub.Topic() != domain.TopicAlert {
		t.Errorf("unexpected topic: %s", sub.Topic())
	}

	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	_ = b.Publish(context.Background(), domain.TopicAlert, []byte("{}"))
	time.Sleep(20 * time.Millisecond)

	if received.Load() != 0 {
		t.Errorf("expected no delivery after unsubscribe, got %d", received.Load())
	}
}

func TestClosedBusRejectsOperations(t *testing.T) {
	b := NewChannelBus(10)
	if err := b.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := b.Publish(context.Background(), domain.TopicAlert, []byte("{}")); err == nil {
		t.Error("expected error publishing on closed bus")
	}
	if _, err := b.Subscribe(context.Background(), domain.TopicAlert, nil); err == nil {
		t.Error("expected error subscribing on closed bus")
	}
	// A second close is a no-op
	if err := b.Close(); err != nil {
		t.Errorf("double close failed: %v", err)
	}
}
