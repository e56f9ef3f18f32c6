package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sitepass/pkg/ports"
)

// Store implements ports.TableStore using the local filesystem.
// Each table is a JSON array of rows in <BasePath>/<table>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".sitepass/tables".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".sitepass", "tables")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(table ports.Table) string {
	return filepath.Join(s.BasePath, string(table)+".json")
}

// WriteTable persists the table to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) WriteTable(ctx context.Context, table ports.Table, rows []ports.Row) error {
	if table == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure table directory: %w", err)
	}

	if rows == nil {
		rows = []ports.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", table, err)
	}

	// Same directory as the destination, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+string(table)+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(table)
	if err := os.Rename(tmpPath, destPath); err != nil {
		// Windows refuses to rename over an existing file.
		if _, statErr := os.Stat(destPath); statErr == nil {
			if err := os.Remove(destPath); err != nil {
				return fmt.Errorf("failed to remove existing table file for overwrite: %w", err)
			}
			if err := os.Rename(tmpPath, destPath); err == nil {
				return nil
			}
		}
		return fmt.Errorf("failed to rename temp file to table file: %w", err)
	}
	return nil
}

// ReadTable retrieves the table from its JSON file.
func (s *Store) ReadTable(ctx context.Context, table ports.Table) ([]ports.Row, error) {
	data, err := os.ReadFile(s.path(table))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}

	var rows []ports.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table %s: %w", table, err)
	}
	return rows, nil
}

// List returns the tables present on disk.
func (s *Store) List(ctx context.Context) ([]ports.Table, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ports.Table{}, nil
		}
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var tables []ports.Table
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		tables = append(tables, ports.Table(strings.TrimSuffix(name, ".json")))
	}
	return tables, nil
}
