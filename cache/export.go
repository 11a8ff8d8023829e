package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cache entry.
type ExportEntry struct {
	Key         string `json:"key"`
	Translation string `json:"translation"`
	Timestamp   int64  `json:"timestamp"`
	Model       string `json:"model"`
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache *Cache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache *Cache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the non-expired cache entries to w in JSON format, newest
// first.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) error {
	entries := e.cache.Entries(ctx)

	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(entries)),
		Metadata:   metadata,
	}

	for key, entry := range entries {
		export.Entries = append(export.Entries, ExportEntry{
			Key:         key,
			Translation: entry.Translation,
			Timestamp:   entry.Timestamp,
			Model:       entry.Model,
		})
	}
	slices.SortFunc(export.Entries, func(a, b ExportEntry) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer provides cache import functionality.
type Importer struct {
	cache *Cache
}

// NewImporter creates a new cache importer.
func NewImporter(cache *Cache) *Importer {
	return &Importer{cache: cache}
}

// Import reads cache entries from r and merges them into the cache with
// their original timestamps. Entries missing a key, translation or model are
// skipped. Expiration and capacity limits apply as for ordinary writes.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	entries := make(map[string]Entry, len(export.Entries))
	for _, entry := range export.Entries {
		if entry.Key == "" || entry.Translation == "" || entry.Model == "" {
			result.Skipped++
			continue
		}
		entries[entry.Key] = Entry{
			Translation: entry.Translation,
			Timestamp:   entry.Timestamp,
			Model:       entry.Model,
		}
		result.Imported++
	}

	i.cache.Merge(ctx, entries)

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
}
