package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/queue"
)

// MessageHandler consumes received messages.
type MessageHandler interface {
	Handle(msg *messages.Message) error
}

type InboundWorker struct {
	inbox    queue.Queue[*messages.Message]
	handler  MessageHandler
	interval time.Duration
}

type NewInboundWorkerOptions struct {
	Inbox    queue.Queue[*messages.Message]
	Handler  MessageHandler
	Interval time.Duration
}

// NewInboundWorker creates a new InboundWorker.
// The worker drains received messages from the inbox into the handler
// every interval.
func NewInboundWorker(opts NewInboundWorkerOptions) *InboundWorker {
	return &InboundWorker{
		inbox:    opts.Inbox,
		handler:  opts.Handler,
		interval: opts.Interval,
	}
}

func (w *InboundWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain()
		}
	}
}

// Drain hands every queued message to the handler and returns how many were
// handled without error.
func (w *InboundWorker) Drain() int {
	handled := 0
	for _, msg := range w.inbox.ReadAll() {
		if err := w.handler.Handle(msg); err != nil {
			log.Error("Failed to handle %s message from client %d: %v", msg.Type, msg.ClientID, err)
			continue
		}
		handled++
	}
	return handled
}
