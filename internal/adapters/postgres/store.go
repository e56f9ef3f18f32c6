// Package postgres keeps the record tables in a single Postgres table of
// JSONB rows, one transaction per overwrite.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sitepass_rows (
	table_name TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	data       JSONB   NOT NULL,
	PRIMARY KEY (table_name, position)
)`

// Store implements ports.TableStore on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewPool creates a connection pool and checks it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// New wraps a pool and makes sure the backing table exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// ReadTable returns the rows of table ordered by position.
func (s *Store) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM sitepass_rows
		WHERE table_name = $1
		ORDER BY position
	`, string(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	var out []ports.Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r ports.Row
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("failed to decode row of %s: %w", table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WriteTable replaces the rows of table inside one transaction.
func (s *Store) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM sitepass_rows WHERE table_name = $1`, string(table)); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}

	if len(rows) > 0 {
		batch := &pgx.Batch{}
		for i, r := range rows {
			data, mErr := json.Marshal(r)
			if mErr != nil {
				return fmt.Errorf("failed to encode row %d of %s: %w", i+1, table, mErr)
			}
			batch.Queue(`
				INSERT INTO sitepass_rows (table_name, position, data)
				VALUES ($1, $2, $3)
			`, string(table), i, data)
		}
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert rows of %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Tables returns each stored table with its row count.
func (s *Store) Tables(ctx context.Context) (map[ports.Table]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, COUNT(*) FROM sitepass_rows GROUP BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[ports.Table]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[ports.Table(name)] = n
	}
	return out, rows.Err()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
