package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/quantro/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations/sqlite"

func newTestSQLite(t *testing.T) Repository {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quantro.db")
	r, err := NewSQLiteRepository(ctx, path, migrationsDir)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(ctx) })
	return r
}

func TestSQLiteRepository_FullSyncs(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	_, err := r.LoadFullSync(ctx, "match", 1)
	assert.True(t, IsNotFound(err))

	syncs, err := r.LoadFullSyncs(ctx, "match")
	require.NoError(t, err)
	assert.Empty(t, syncs)

	require.NoError(t, r.SaveFullSync(ctx, &models.FullSync{MatchID: "match", ClientID: 2, Cycle: 5, Payload: []byte{1, 2}, Timestamp: 100}))
	require.NoError(t, r.SaveFullSync(ctx, &models.FullSync{MatchID: "match", ClientID: 1, Cycle: 3, Payload: []byte{3}, Timestamp: 101}))
	require.NoError(t, r.SaveFullSync(ctx, &models.FullSync{MatchID: "other", ClientID: 1, Cycle: 9, Payload: []byte{4}, Timestamp: 102}))
	require.NoError(t, r.SaveFullSync(ctx, &models.FullSync{MatchID: "match", ClientID: 2, Cycle: 6, Payload: []byte{5, 6, 7}, Timestamp: 103}))

	got, err := r.LoadFullSync(ctx, "match", 2)
	require.NoError(t, err)
	assert.Equal(t, &models.FullSync{MatchID: "match", ClientID: 2, Cycle: 6, Payload: []byte{5, 6, 7}, Timestamp: 103}, got)

	syncs, err = r.LoadFullSyncs(ctx, "match")
	require.NoError(t, err)
	require.Len(t, syncs, 2)
	assert.Equal(t, uint32(1), syncs[0].ClientID)
	assert.Equal(t, uint32(2), syncs[1].ClientID)

	require.NoError(t, r.DeleteMatch(ctx, "match"))
	syncs, err = r.LoadFullSyncs(ctx, "match")
	require.NoError(t, err)
	assert.Empty(t, syncs)

	syncs, err = r.LoadFullSyncs(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, syncs, 1)
}

func TestNewSQLiteRepository_MissingMigrations(t *testing.T) {
	_, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "q.db"), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&ErrNotFound{}))
	assert.False(t, IsNotFound(assert.AnError))
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to load: %w", &ErrNotFound{MatchID: "m"})
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "failed to load: match m not found", err.Error())
}
