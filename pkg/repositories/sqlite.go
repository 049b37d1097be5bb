package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbodonnell/quantro/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveFullSync(ctx context.Context, s *models.FullSync) error {
	q := `
	INSERT OR REPLACE INTO full_syncs (match_id, client_id, cycle, payload, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, s.MatchID, s.ClientID, s.Cycle, s.Payload, s.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert full sync: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadFullSync(ctx context.Context, matchID string, clientID uint32) (*models.FullSync, error) {
	q := `
	SELECT cycle, payload, created_at FROM full_syncs WHERE match_id = ? AND client_id = ?;
	`
	s := &models.FullSync{
		MatchID:  matchID,
		ClientID: clientID,
	}
	if err := r.db.QueryRowContext(ctx, q, matchID, clientID).Scan(&s.Cycle, &s.Payload, &s.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{MatchID: matchID}
		}
		return nil, fmt.Errorf("failed to scan full sync: %v", err)
	}

	return s, nil
}

func (r *SQLiteRepository) LoadFullSyncs(ctx context.Context, matchID string) ([]*models.FullSync, error) {
	q := `
	SELECT client_id, cycle, payload, created_at FROM full_syncs WHERE match_id = ? ORDER BY client_id;
	`
	rows, err := r.db.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query full syncs: %v", err)
	}
	defer rows.Close()

	var syncs []*models.FullSync
	for rows.Next() {
		s := &models.FullSync{MatchID: matchID}
		if err := rows.Scan(&s.ClientID, &s.Cycle, &s.Payload, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan full sync: %v", err)
		}
		syncs = append(syncs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate full syncs: %v", err)
	}

	return syncs, nil
}

func (r *SQLiteRepository) DeleteMatch(ctx context.Context, matchID string) error {
	q := `
	DELETE FROM full_syncs WHERE match_id = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, matchID); err != nil {
		return fmt.Errorf("failed to delete match: %v", err)
	}

	return nil
}
