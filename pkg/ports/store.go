package ports

import (
	"context"
	"slices"
)

// Table names a logical table of the record store.
type Table string

const (
	TableConversations Table = "conversations"
	TableInductions    Table = "inductions"
	TableMaintenance   Table = "maintenanceSchedules"
)

// Tables lists every table the service reads or writes.
func Tables() []Table {
	return []Table{TableConversations, TableInductions, TableMaintenance}
}

// ParseTable resolves a table by name. It reports false for unknown names.
func ParseTable(name string) (Table, bool) {
	for _, t := range Tables() {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Row is one record keyed by column header. Every cell is text; typed
// decoding happens in pkg/rows.
type Row map[string]string

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRows deep-copies a slice of rows.
func CloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

var columns = map[Table][]string{
	TableConversations: {
		"Email ID", "Sender Domain", "Company Name", "Subject",
		"Status", "Last Updated", "Sender Domain + Subject",
	},
	TableInductions: {"Company", "Name", "Expiry Date (Auto)"},
	TableMaintenance: {
		"Maintenance subject", "Company",
		"Inspection date Q1", "Inspection date Q2", "Inspection date Q3", "Inspection date Q4",
	},
}

// Columns returns the canonical header of a table, in order.
func Columns(t Table) []string {
	return slices.Clone(columns[t])
}

// Header returns the canonical columns of t followed by any extra keys found
// in rows, sorted. Adapters that store positional data use it so unknown
// columns survive a round trip.
func Header(t Table, rows []Row) []string {
	header := Columns(t)
	var extra []string
	for _, r := range rows {
		for k := range r {
			if !slices.Contains(header, k) && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	return append(header, extra...)
}

// TableStore defines the interface for the tabular record store.
// Every table is read whole and overwritten whole; callers that modify a
// table must serialize their read-modify-write cycle (see pkg/locking).
type TableStore interface {
	// ReadTable returns every row of the table in stored order.
	// A table that was never written yields no rows and no error.
	ReadTable(ctx context.Context, table Table) ([]Row, error)

	// WriteTable replaces the whole content of the table.
	WriteTable(ctx context.Context, table Table, rows []Row) error
}
