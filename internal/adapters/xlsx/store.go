// Package xlsx stores each table as an Excel workbook, the format the
// operators maintain the inductions and maintenance schedules in.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sitepass/pkg/ports"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written to new workbooks.
const DefaultSheet = "Sheet1"

// DefaultFiles names the workbook of each table.
var DefaultFiles = map[ports.Table]string{
	ports.TableConversations: "conversation_tracker.xlsx",
	ports.TableInductions:    "induction_tracker.xlsx",
	ports.TableMaintenance:   "maintenance_schedule.xlsx",
}

// Store implements ports.TableStore over one workbook per table in Dir.
// The first row of the first sheet is the header; every later row is a record.
type Store struct {
	Dir   string
	Files map[ports.Table]string
}

// New creates a workbook store rooted at dir using DefaultFiles.
func New(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{Dir: dir, Files: DefaultFiles}
}

// Path returns the workbook that backs table. Tables without a configured
// file name use <table>.xlsx.
func (s *Store) Path(table ports.Table) string {
	name, ok := s.Files[table]
	if !ok {
		name = string(table) + ".xlsx"
	}
	return filepath.Join(s.Dir, name)
}

// ReadTable loads the first sheet of the table's workbook. Date cells come
// back as spreadsheet serial numbers.
func (s *Store) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	f, err := excelize.OpenFile(s.Path(table))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open workbook %s: %w", table, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, table, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	header := grid[0]
	rows := make([]ports.Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		if blank(cells) {
			continue
		}
		row := make(ports.Row, len(header))
		for i, col := range header {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTable rewrites the table's workbook: canonical columns first, then any
// extra columns found in rows. The file is replaced atomically.
func (s *Store) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure workbook directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := ports.Header(table, rows)
	if err := f.SetSheetRow(DefaultSheet, "A1", toCells(header)); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", table, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]string, len(header))
		for j, col := range header {
			values[j] = r[col]
		}
		if err := f.SetSheetRow(DefaultSheet, cell, toCells(values)); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, table, err)
		}
	}

	tmp, err := os.CreateTemp(s.Dir, "tmp-"+string(table)+"-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := f.SaveAs(tmpPath); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", table, err)
	}
	if err := os.Rename(tmpPath, s.Path(table)); err != nil {
		return fmt.Errorf("failed to replace workbook %s: %w", table, err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
