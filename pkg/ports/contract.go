package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTableStoreContract runs a suite of tests to verify that a TableStore
// implementation adheres to the defined interface contract.
// The store must start empty.
func RunTableStoreContract(t *testing.T, store TableStore) {
	ctx := context.Background()

	t.Run("Read Missing Table", func(t *testing.T) {
		rows, err := store.ReadTable(ctx, TableMaintenance)
		require.NoError(t, err, "reading an unwritten table should not fail")
		assert.Empty(t, rows)
	})

	t.Run("Write and Read", func(t *testing.T) {
		in := []Row{
			{"Company": "Acme", "Name": "Alice", "Expiry Date (Auto)": "2025-01-01"},
			{"Company": "Acme", "Name": "Bob", "Expiry Date (Auto)": ""},
		}
		require.NoError(t, store.WriteTable(ctx, TableInductions, in))

		out, err := store.ReadTable(ctx, TableInductions)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Alice", out[0]["Name"], "row order is preserved")
		assert.Equal(t, "Bob", out[1]["Name"])
		assert.Equal(t, "2025-01-01", out[0]["Expiry Date (Auto)"])
		assert.Empty(t, out[1]["Expiry Date (Auto)"])
	})

	t.Run("Overwrite Replaces", func(t *testing.T) {
		require.NoError(t, store.WriteTable(ctx, TableInductions, []Row{
			{"Company": "Beta", "Name": "Carol", "Expiry Date (Auto)": "2024-06-01"},
		}))

		out, err := store.ReadTable(ctx, TableInductions)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Carol", out[0]["Name"])
	})

	t.Run("Extra Columns Survive", func(t *testing.T) {
		in := []Row{{
			"Email ID": "a@acme.com", "Subject": "Boiler", "Status": "Awaiting RAMS",
			"Notes": "call before 9",
		}}
		require.NoError(t, store.WriteTable(ctx, TableConversations, in))

		out, err := store.ReadTable(ctx, TableConversations)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "call before 9", out[0]["Notes"])
		assert.Equal(t, "Awaiting RAMS", out[0]["Status"])
	})

	t.Run("Tables Are Independent", func(t *testing.T) {
		require.NoError(t, store.WriteTable(ctx, TableMaintenance, []Row{
			{"Maintenance subject": "Boiler", "Company": "Acme", "Inspection date Q1": "March"},
		}))

		conv, err := store.ReadTable(ctx, TableConversations)
		require.NoError(t, err)
		assert.Len(t, conv, 1)

		maint, err := store.ReadTable(ctx, TableMaintenance)
		require.NoError(t, err)
		require.Len(t, maint, 1)
		assert.Equal(t, "March", maint[0]["Inspection date Q1"])
	})

	t.Run("Returned Rows Are Copies", func(t *testing.T) {
		out, err := store.ReadTable(ctx, TableMaintenance)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		out[0]["Company"] = "Mutated"

		again, err := store.ReadTable(ctx, TableMaintenance)
		require.NoError(t, err)
		assert.Equal(t, "Acme", again[0]["Company"])
	})

	t.Run("Write Empty", func(t *testing.T) {
		require.NoError(t, store.WriteTable(ctx, TableMaintenance, nil))
		out, err := store.ReadTable(ctx, TableMaintenance)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("Concurrent Readers", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := store.ReadTable(ctx, TableConversations); err != nil {
					errs <- fmt.Errorf("reader %d: %w", i, err)
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
	})
}
