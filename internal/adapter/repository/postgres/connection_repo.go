package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// connectionRepository implements domain.ConnectionRepository
type connectionRepository struct {
	db *DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *DB) domain.ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, provider, access_url, status, last_sync_at, last_sync_error`

func (r *connectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *connectionRepository) GetByAccessURL(ctx context.Context, accessURL string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE access_url = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accessURL))
}

func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, provider, access_url, status, last_sync_at, last_sync_error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		conn.ID, conn.Provider, conn.AccessURL, string(conn.Status), conn.LastSyncAt, conn.LastSyncError)
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	query := `
		UPDATE connections
		SET status = $2, last_sync_at = $3, last_sync_error = $4
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		conn.ID, string(conn.Status), conn.LastSyncAt, conn.LastSyncError)
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) scanOne(row *sql.Row) (*domain.Connection, error) {
	var conn domain.Connection
	var status string
	err := row.Scan(&conn.ID, &conn.Provider, &conn.AccessURL, &status, &conn.LastSyncAt, &conn.LastSyncError)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan connection: %w", err)
	}
	conn.Status = domain.ConnectionStatus(status)
	return &conn, nil
}
