package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// Notifier is the consuming side of the alert topic. It subscribes on
// construction and writes one notice line per received alert, so
// supervisors see alerts as they happen rather than only in the final
// report.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	count atomic.Int64
	sub   domain.Subscription
}

// NewNotifier subscribes to the alert topic and streams notices to out.
func NewNotifier(ctx context.Context, bus domain.EventBus, out io.Writer) (*Notifier, error) {
	n := &Notifier{out: out}
	sub, err := bus.Subscribe(ctx, domain.TopicAlert, n.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe alert topic: %w", err)
	}
	n.sub = sub
	return n, nil
}

func (n *Notifier) handle(ctx context.Context, msg *domain.Message) error {
	var a Alert
	if err := json.Unmarshal(msg.Payload, &a); err != nil {
		slog.Error("failed to decode alert message", "error", err)
		return err
	}

	n.mu.Lock()
	fmt.Fprintln(n.out, a.Message)
	n.mu.Unlock()
	n.count.Add(1)

	return nil
}

// Count returns the number of alerts received so far. Delivery is
// asynchronous, so the count trails the publisher briefly.
func (n *Notifier) Count() int {
	return int(n.count.Load())
}

// Close stops consuming the alert topic.
func (n *Notifier) Close() error {
	return n.sub.Unsubscribe()
}
