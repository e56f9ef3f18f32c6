package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/sitepass/pkg/ports"
)

// TableInfo summarizes one table of a store.
type TableInfo struct {
	Table ports.Table `json:"table"`
	Rows  int         `json:"rows"`
}

// ListTables counts the rows of every known table.
func ListTables(ctx context.Context, store ports.TableStore) ([]TableInfo, error) {
	var out []TableInfo
	for _, t := range ports.Tables() {
		rows, err := store.ReadTable(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t, err)
		}
		out = append(out, TableInfo{Table: t, Rows: len(rows)})
	}
	return out, nil
}

// DumpTable writes the rows of table to w as a JSON array.
func DumpTable(ctx context.Context, store ports.TableStore, table ports.Table, w io.Writer) error {
	rows, err := store.ReadTable(ctx, table)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []ports.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// CopyTables copies the given tables (all when empty) from src to dst,
// replacing their content. It returns the number of rows copied per table.
// Tables missing in src are skipped.
func CopyTables(ctx context.Context, src, dst ports.TableStore, tables ...ports.Table) (map[ports.Table]int, error) {
	if len(tables) == 0 {
		tables = ports.Tables()
	}
	copied := make(map[ports.Table]int)
	for _, t := range tables {
		rows, err := src.ReadTable(ctx, t)
		if err != nil {
			return copied, fmt.Errorf("read %s: %w", t, err)
		}
		if rows == nil {
			continue
		}
		if err := dst.WriteTable(ctx, t, rows); err != nil {
			return copied, fmt.Errorf("write %s: %w", t, err)
		}
		copied[t] = len(rows)
	}
	return copied, nil
}

// ReadRows decodes a JSON array of rows as written by DumpTable.
func ReadRows(r io.Reader) ([]ports.Row, error) {
	var rows []ports.Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("invalid rows: %w", err)
	}
	return rows, nil
}

// SortedTables returns the keys of m in name order.
func SortedTables(m map[ports.Table]int) []ports.Table {
	keys := make([]ports.Table, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
