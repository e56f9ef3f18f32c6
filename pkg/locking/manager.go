package locking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sitepass/internal/logging"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes read-modify-write cycles on store tables.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.TableStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a lock Manager over the given store.
func NewManager(store ports.TableStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultLockTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Store returns the underlying table store.
func (m *Manager) Store() ports.TableStore {
	return m.store
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return domain.StoreUnavailable("lock "+key, fmt.Errorf("failed to acquire distributed lock: %w", err))
		}
		defer func() {
			// The caller's ctx may be canceled by now; the lock must still go.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// UpdateFunc receives the current rows of a table and returns the rows to
// write back. Returning write=false skips the write.
type UpdateFunc func(ctx context.Context, rows []ports.Row) (out []ports.Row, write bool, err error)

// Update runs a read-modify-write cycle on table under the table's lock.
// Store failures are reported as StoreUnavailable; nothing is written when
// fn fails.
func (m *Manager) Update(ctx context.Context, table ports.Table, fn UpdateFunc) error {
	return m.WithLock(ctx, string(table), func(ctx context.Context) error {
		rows, err := m.store.ReadTable(ctx, table)
		if err != nil {
			return storeErr("read "+string(table), err)
		}

		out, write, err := fn(ctx, rows)
		if err != nil || !write {
			return err
		}

		if err := m.store.WriteTable(ctx, table, out); err != nil {
			return storeErr("write "+string(table), err)
		}
		return nil
	})
}

// Read returns the rows of table without taking a lock.
func (m *Manager) Read(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	rows, err := m.store.ReadTable(ctx, table)
	if err != nil {
		return nil, storeErr("read "+string(table), err)
	}
	return rows, nil
}

func storeErr(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.StoreUnavailable(op, err)
}
