package memory

import (
	"context"
	"sync"

	"github.com/aretw0/sitepass/pkg/ports"
)

// Store implements ports.TableStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[ports.Table][]ports.Row
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[ports.Table][]ports.Row),
	}
}

// NewStoreWith creates a store pre-seeded with the given tables.
func NewStoreWith(seed map[ports.Table][]ports.Row) *Store {
	s := NewStore()
	for t, rows := range seed {
		s.data[t] = ports.CloneRows(rows)
	}
	return s
}

// WriteTable replaces the table in memory.
func (s *Store) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := ports.CloneRows(rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[table] = copied
	return nil
}

// ReadTable returns the rows of the table.
func (s *Store) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copy on read so callers can't mutate store state through the maps
	return ports.CloneRows(s.data[table]), nil
}
