package local

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"asnode/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore persists local state in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed local store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure local schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ServiceCallbackURL(ctx context.Context, serviceID string) (string, error) {
	return s.queryString(ctx, "service url", `SELECT url FROM as_service_urls WHERE service_id = $1`, serviceID)
}

func (s *PostgresStore) SetServiceCallbackURL(ctx context.Context, serviceID, url string) error {
	query := `
		INSERT INTO as_service_urls (service_id, url)
		VALUES ($1, $2)
		ON CONFLICT (service_id) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, serviceID, url); err != nil {
		return fmt.Errorf("set service url: %w", err)
	}
	return nil
}

func (s *PostgresStore) RPIDForRequest(ctx context.Context, requestID string) (string, error) {
	return s.queryString(ctx, "rp mapping", `SELECT rp_id FROM as_rp_mappings WHERE request_id = $1`, requestID)
}

func (s *PostgresStore) SetRPIDForRequest(ctx context.Context, requestID, rpID string) error {
	query := `
		INSERT INTO as_rp_mappings (request_id, rp_id)
		VALUES ($1, $2)
		ON CONFLICT (request_id) DO UPDATE SET
			rp_id = EXCLUDED.rp_id
	`
	if _, err := s.db.ExecContext(ctx, query, requestID, rpID); err != nil {
		return fmt.Errorf("set rp mapping: %w", err)
	}
	return nil
}

// DeleteRPMappings removes mappings in a single round trip.
func (s *PostgresStore) DeleteRPMappings(ctx context.Context, requestIDs ...string) error {
	if len(requestIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM as_rp_mappings WHERE request_id = ANY($1::text[])`, pq.Array(requestIDs))
	if err != nil {
		return fmt.Errorf("delete rp mappings: %w", err)
	}
	return nil
}

func (s *PostgresStore) NodeCallbackURL(ctx context.Context, key string) (string, error) {
	return s.queryString(ctx, "node callback", `SELECT url FROM as_node_callbacks WHERE key = $1`, key)
}

func (s *PostgresStore) SetNodeCallbackURL(ctx context.Context, key, url string) error {
	query := `
		INSERT INTO as_node_callbacks (key, url)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, url); err != nil {
		return fmt.Errorf("set node callback: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestHeight(ctx context.Context) (int64, error) {
	var height int64
	err := s.db.QueryRowContext(ctx, `SELECT latest_height FROM as_ledger_state WHERE id = 1`).Scan(&height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get latest height: %w", err)
	}
	return height, nil
}

func (s *PostgresStore) SetLatestHeight(ctx context.Context, height int64) error {
	query := `
		INSERT INTO as_ledger_state (id, latest_height)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			latest_height = EXCLUDED.latest_height
	`
	if _, err := s.db.ExecContext(ctx, query, height); err != nil {
		return fmt.Errorf("set latest height: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryString(ctx context.Context, what, query string, arg string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", what, err)
	}
	return v, nil
}
