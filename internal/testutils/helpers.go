package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/sitepass/internal/adapters/file"
	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/stretchr/testify/require"
)

// Tables returns the fixture shared by adapter tests. Acme has one valid
// induction (Alice, expiring 2024-06-01), one expired (Bob) and one with an
// unreadable expiry (Dan). The Acme boiler is scheduled for March and June.
func Tables() map[ports.Table][]ports.Row {
	return map[ports.Table][]ports.Row{
		ports.TableInductions: {
			{"Company": "Acme", "Name": "Alice", "Expiry Date (Auto)": "2024-06-01"},
			{"Company": "Acme", "Name": "Bob", "Expiry Date (Auto)": "2024-01-01"},
			{"Company": "Acme", "Name": "Dan", "Expiry Date (Auto)": "soon"},
		},
		ports.TableMaintenance: {
			{"Maintenance subject": "Boiler", "Company": "Acme", "Inspection date Q1": "March", "Inspection date Q2": "June"},
		},
	}
}

// SetupTestDir creates a temporary directory holding the fixture tables as
// a file store. It returns the absolute path of the directory.
// It fails the test immediately on error.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	store := file.New(absPath)
	for table, rows := range Tables() {
		require.NoError(t, store.WriteTable(context.Background(), table, rows), "Failed to seed %s", table)
	}
	return absPath
}
