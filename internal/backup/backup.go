// Package backup serializes the full dataset to a portable JSON
// document and restores it with Replace or Merge semantics. An export
// is a point-in-time snapshot: ids are retained in the file, but they
// are never trusted on the way back in.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

// Version is the backup document format version.
const Version = 1

// Document is the backup file shape.
type Document struct {
	Version    int             `json:"version"`
	ExportedAt string          `json:"exportedAt"`
	Buckets    []domain.Bucket `json:"buckets"`
	Tasks      []domain.Task   `json:"tasks"`
}

// Export builds a backup document from the given dataset. Ids are
// retained: the file is a snapshot, not a merge input.
func Export(buckets []domain.Bucket, tasks []domain.Task, now time.Time) Document {
	if buckets == nil {
		buckets = []domain.Bucket{}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return Document{
		Version:    Version,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Buckets:    buckets,
		Tasks:      tasks,
	}
}

// Filename returns the conventional backup filename for a date.
func Filename(t time.Time) string {
	return fmt.Sprintf("nooks-backup-%s.json", t.Format("2006-01-02"))
}

// WriteFile writes a backup document as indented JSON.
func WriteFile(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Validate is the structural guard run before any import mutates
// anything. It checks only the top-level shape: the value must be a
// JSON object with version (number), exportedAt (string), buckets
// (array), and tasks (array). Nested shapes are not validated here.
func Validate(raw []byte) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	obj, ok := v.(map[string]interface{})
	if !ok || obj == nil {
		return false
	}
	if _, ok := obj["version"].(float64); !ok {
		return false
	}
	if _, ok := obj["exportedAt"].(string); !ok {
		return false
	}
	if _, ok := obj["buckets"].([]interface{}); !ok {
		return false
	}
	if _, ok := obj["tasks"].([]interface{}); !ok {
		return false
	}
	return true
}

// Parse validates and decodes a backup file's contents.
func Parse(raw []byte) (*Document, error) {
	if !Validate(raw) {
		return nil, fmt.Errorf("not a valid backup file")
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	return &doc, nil
}

// ReadFile loads and validates a backup file.
func ReadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return Parse(raw)
}

// StaleAfter is how old the last export may be before the staleness
// signal fires. Advisory only.
const StaleAfter = 7 * 24 * time.Hour

// Staleness reports how long ago the last export ran and whether that
// exceeds StaleAfter. A nil lastExport means no export has ever run,
// which always counts as stale.
func Staleness(lastExport *time.Time, now time.Time) (time.Duration, bool) {
	if lastExport == nil {
		return 0, true
	}
	age := now.Sub(*lastExport)
	return age, age > StaleAfter
}
