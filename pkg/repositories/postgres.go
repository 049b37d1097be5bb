package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cbodonnell/quantro/pkg/log"
	"github.com/cbodonnell/quantro/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository serializes access to a single connection; pgx.Conn is
// not safe for concurrent use.
type PostgresRepository struct {
	lock sync.Mutex
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository.
// It panics if it is unable to connect to the database.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) Repository {
	return &PostgresRepository{
		conn: connectDb(ctx, connStr),
	}
}

func connectDb(ctx context.Context, connStr string) *pgx.Conn {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Unable to connect to database: %v\n", err))
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		panic(fmt.Sprintf("Unable to query database: %v\n", err))
	}

	log.Info("Connected to %s as %s", database, username)

	return conn
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveFullSync(ctx context.Context, s *models.FullSync) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	INSERT INTO full_syncs (match_id, client_id, cycle, payload, created_at) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (match_id, client_id) DO UPDATE SET cycle = $3, payload = $4, updated_at = $5;
	`
	_, err := r.conn.Exec(ctx, q, s.MatchID, int64(s.ClientID), int64(s.Cycle), s.Payload, s.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert full sync: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadFullSync(ctx context.Context, matchID string, clientID uint32) (*models.FullSync, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	SELECT cycle, payload, COALESCE(updated_at, created_at) FROM full_syncs WHERE match_id = $1 AND client_id = $2;
	`
	var cycle int64
	s := &models.FullSync{
		MatchID:  matchID,
		ClientID: clientID,
	}
	if err := r.conn.QueryRow(ctx, q, matchID, int64(clientID)).Scan(&cycle, &s.Payload, &s.Timestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{MatchID: matchID}
		}
		return nil, fmt.Errorf("failed to scan full sync: %v", err)
	}
	s.Cycle = uint32(cycle)

	return s, nil
}

func (r *PostgresRepository) LoadFullSyncs(ctx context.Context, matchID string) ([]*models.FullSync, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	SELECT client_id, cycle, payload, COALESCE(updated_at, created_at) FROM full_syncs WHERE match_id = $1 ORDER BY client_id;
	`
	rows, err := r.conn.Query(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query full syncs: %v", err)
	}
	defer rows.Close()

	var syncs []*models.FullSync
	for rows.Next() {
		var clientID, cycle int64
		s := &models.FullSync{MatchID: matchID}
		if err := rows.Scan(&clientID, &cycle, &s.Payload, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan full sync: %v", err)
		}
		s.ClientID = uint32(clientID)
		s.Cycle = uint32(cycle)
		syncs = append(syncs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate full syncs: %v", err)
	}

	return syncs, nil
}

func (r *PostgresRepository) DeleteMatch(ctx context.Context, matchID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, err := r.conn.Exec(ctx, "DELETE FROM full_syncs WHERE match_id = $1", matchID); err != nil {
		return fmt.Errorf("failed to delete match: %v", err)
	}

	return nil
}
