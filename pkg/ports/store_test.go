package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// mockStore is a minimal TableStore used to exercise the contract itself.
type mockStore struct {
	mu   sync.Mutex
	data map[ports.Table][]ports.Row
}

func (m *mockStore) ReadTable(_ context.Context, table ports.Table) ([]ports.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ports.CloneRows(m.data[table]), nil
}

func (m *mockStore) WriteTable(_ context.Context, table ports.Table, rows []ports.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[table] = ports.CloneRows(rows)
	return nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunTableStoreContract(t, &mockStore{data: map[ports.Table][]ports.Row{}})
}

func TestHeader_AppendsExtraColumnsSorted(t *testing.T) {
	rows := []ports.Row{
		{"Company": "Acme", "zeta": "1"},
		{"alpha": "2", "Name": "Bob"},
	}
	assert.Equal(t,
		[]string{"Company", "Name", "Expiry Date (Auto)", "alpha", "zeta"},
		ports.Header(ports.TableInductions, rows))
}

func TestParseTable(t *testing.T) {
	tbl, ok := ports.ParseTable("maintenanceSchedules")
	assert.True(t, ok)
	assert.Equal(t, ports.TableMaintenance, tbl)

	_, ok = ports.ParseTable("sessions")
	assert.False(t, ok)
}

func TestColumns_ReturnsCopy(t *testing.T) {
	cols := ports.Columns(ports.TableConversations)
	cols[0] = "changed"
	assert.Equal(t, "Email ID", ports.Columns(ports.TableConversations)[0])
}
