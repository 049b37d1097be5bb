package repositories

import (
	"context"

	"github.com/cbodonnell/quantro/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	// SaveFullSync stores s, replacing any earlier full sync of the same
	// client in the same match.
	SaveFullSync(ctx context.Context, s *models.FullSync) error
	LoadFullSync(ctx context.Context, matchID string, clientID uint32) (*models.FullSync, error)
	// LoadFullSyncs returns the full syncs of a match ordered by client ID.
	LoadFullSyncs(ctx context.Context, matchID string) ([]*models.FullSync, error)
	DeleteMatch(ctx context.Context, matchID string) error
}
