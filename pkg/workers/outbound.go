package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/quantro/pkg/log"
)

// Flusher sends whatever has been produced since the last flush.
type Flusher interface {
	Flush(ctx context.Context) error
}

type OutboundWorker struct {
	flusher  Flusher
	interval time.Duration
}

type NewOutboundWorkerOptions struct {
	Flusher  Flusher
	Interval time.Duration
}

// NewOutboundWorker creates a new OutboundWorker.
// The worker flushes the local simulation's output every interval.
func NewOutboundWorker(opts NewOutboundWorkerOptions) *OutboundWorker {
	return &OutboundWorker{
		flusher:  opts.Flusher,
		interval: opts.Interval,
	}
}

func (w *OutboundWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.flusher.Flush(ctx); err != nil {
				log.Error("Failed to flush outgoing messages: %v", err)
			}
		}
	}
}
