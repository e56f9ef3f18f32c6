package middleware_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/sitepass/pkg/ports"
)

var errBackend = errors.New("backend down")

// MockStore is a simple map-based store for testing middleware.
// Setting Fail makes every call return errBackend.
type MockStore struct {
	mu    sync.Mutex
	data  map[ports.Table][]ports.Row
	Fail  bool
	Calls int
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[ports.Table][]ports.Row),
	}
}

func (s *MockStore) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Fail {
		return nil, errBackend
	}
	return ports.CloneRows(s.data[table]), nil
}

func (s *MockStore) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Fail {
		return errBackend
	}
	s.data[table] = ports.CloneRows(rows)
	return nil
}
