// Package events provides the mutation journal. Every local store
// mutation writes one row here inside the same transaction, so the
// journal can never disagree with the data it describes.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

// Writer handles writing journal entries
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new journal writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an entry to the journal
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (entity_type, entity_id, op, payload)
		VALUES (?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.EntityType, event.EntityID, event.Op, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogMutation logs a mutation with a structured payload. A nil payload
// map writes a NULL payload column.
func (w *Writer) LogMutation(tx *sql.Tx, entityType string, entityID int64, op string, payload map[string]interface{}) error {
	event := &domain.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
		s := string(data)
		event.Payload = &s
	}
	return w.LogEvent(tx, event)
}

// Recent returns the most recent journal entries, newest first.
func (w *Writer) Recent(limit int) ([]domain.Event, error) {
	rows, err := w.db.Query(`
		SELECT id, timestamp, entity_type, entity_id, op, payload
		FROM event_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event log: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &ts, &e.EntityType, &e.EntityID, &e.Op, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if t, err := time.Parse("2006-01-02T15:04:05Z", ts); err == nil {
			e.Timestamp = t
		}
		if payload.Valid {
			e.Payload = &payload.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// getExecutor returns the appropriate executor (tx or db)
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
