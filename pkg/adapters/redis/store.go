package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/sitepass/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "sitepass:table:"

// Store implements ports.TableStore using Redis.
// Each table is one JSON array under <prefix><table>.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for tables.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(table ports.Table) string {
	return s.prefix + string(table)
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// WriteTable persists the table to Redis.
func (s *Store) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	if rows == nil {
		rows = []ports.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", table, err)
	}

	// The value and its index entry change together.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(table), data, 0)
	pipe.HSet(ctx, s.indexKey(), string(table), time.Now().UTC().Format(time.RFC3339))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// ReadTable retrieves the table from Redis.
func (s *Store) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	val, err := s.client.Get(ctx, s.key(table)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rows []ports.Row
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table %s: %w", table, err)
	}
	return rows, nil
}

// Written lists the tables ever written, with their last write time (RFC3339).
func (s *Store) Written(ctx context.Context) (map[ports.Table]string, error) {
	idx, err := s.client.HGetAll(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[ports.Table]string, len(idx))
	for _, name := range names {
		out[ports.Table(name)] = idx[name]
	}
	return out, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
