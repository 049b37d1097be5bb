package workers

import (
	"context"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/repositories"
	"github.com/cbodonnell/quantro/pkg/repositories/models"
)

type SnapshotEventType int

const (
	SnapshotEventTypeSave SnapshotEventType = iota
	SnapshotEventTypeDelete
)

func (t SnapshotEventType) String() string {
	switch t {
	case SnapshotEventTypeSave:
		return "save"
	case SnapshotEventTypeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// SnapshotEvent asks for a full sync to be saved or for every full sync of
// a match to be deleted.
type SnapshotEvent struct {
	Type     SnapshotEventType
	MatchID  string
	FullSync *models.FullSync
}

type SnapshotWorker struct {
	repository   repositories.Repository
	snapshotChan <-chan SnapshotEvent
}

type NewSnapshotWorkerOptions struct {
	Repository   repositories.Repository
	SnapshotChan <-chan SnapshotEvent
}

// NewSnapshotWorker creates a new SnapshotWorker.
// The worker persists the full syncs seen by the relay in the order they
// were received.
func NewSnapshotWorker(opts NewSnapshotWorkerOptions) *SnapshotWorker {
	return &SnapshotWorker{
		repository:   opts.Repository,
		snapshotChan: opts.SnapshotChan,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.snapshotChan:
			w.handle(ctx, event)
		}
	}
}

func (w *SnapshotWorker) handle(ctx context.Context, event SnapshotEvent) {
	switch event.Type {
	case SnapshotEventTypeSave:
		if event.FullSync == nil {
			log.Error("Save event for match %s without a full sync", event.MatchID)
			return
		}
		if err := w.repository.SaveFullSync(ctx, event.FullSync); err != nil {
			log.Error("Failed to save full sync of client %d in match %s: %v", event.FullSync.ClientID, event.MatchID, err)
		}
	case SnapshotEventTypeDelete:
		if err := w.repository.DeleteMatch(ctx, event.MatchID); err != nil {
			log.Error("Failed to delete match %s: %v", event.MatchID, err)
		}
	default:
		log.Error("Unknown snapshot event type: %v", event.Type)
	}
}
