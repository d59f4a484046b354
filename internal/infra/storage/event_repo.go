package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// TurnEvent is the storage form of one turn log entry.
type TurnEvent struct {
	ID        string
	SessionID string
	Timestamp time.Time
	EventType string
	Turn      int
	Payload   map[string]interface{}
}

// SQLiteEventRepository persists turn events to SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event TurnEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO turn_events (id, session_id, timestamp, event_type, turn, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Timestamp, event.EventType, event.Turn, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]TurnEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TurnEvent
	for rows.Next() {
		var e TurnEvent
		var payloadStr string
		err := rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.EventType, &e.Turn, &payloadStr)
		if err != nil {
			return nil, err
		}
		if payloadStr != "" && payloadStr != "null" {
			if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetBySessionID returns a session's full event history in order.
func (r *SQLiteEventRepository) GetBySessionID(ctx context.Context, sessionID string) ([]TurnEvent, error) {
	query := `SELECT id, session_id, timestamp, event_type, turn, payload FROM turn_events WHERE session_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sessionID)
}

// GetByEventType filters a session's history by event type.
func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]TurnEvent, error) {
	query := `SELECT id, session_id, timestamp, event_type, turn, payload FROM turn_events WHERE session_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, sessionID, eventType)
}
