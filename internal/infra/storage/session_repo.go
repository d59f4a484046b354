package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SessionSnapshot is the durable form of one practice session. The
// mission and state payloads are opaque JSON as far as storage cares.
type SessionSnapshot struct {
	SessionID   string
	MissionJSON []byte
	StateJSON   []byte
	IsActive    bool
	LastUpdated time.Time
}

// SQLiteSessionRepository persists session snapshots to SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Upsert writes a session snapshot, replacing any previous one.
func (r *SQLiteSessionRepository) Upsert(ctx context.Context, snap SessionSnapshot) error {
	query := `
		INSERT INTO sessions (session_id, mission_json, state_json, is_active, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			mission_json=excluded.mission_json,
			state_json=excluded.state_json,
			is_active=excluded.is_active,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.SessionID, string(snap.MissionJSON), string(snap.StateJSON), snap.IsActive, snap.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Get loads one session snapshot.
func (r *SQLiteSessionRepository) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	query := `SELECT session_id, mission_json, state_json, is_active, last_updated FROM sessions WHERE session_id = ?`
	row := r.db.QueryRowContext(ctx, query, sessionID)

	var snap SessionSnapshot
	var missionStr, stateStr string
	err := row.Scan(&snap.SessionID, &missionStr, &stateStr, &snap.IsActive, &snap.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	snap.MissionJSON = []byte(missionStr)
	snap.StateJSON = []byte(stateStr)
	return &snap, nil
}

// GetActive returns every active session snapshot, for restart
// continuation.
func (r *SQLiteSessionRepository) GetActive(ctx context.Context) ([]SessionSnapshot, error) {
	query := `SELECT session_id, mission_json, state_json, is_active, last_updated FROM sessions WHERE is_active = 1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []SessionSnapshot
	for rows.Next() {
		var snap SessionSnapshot
		var missionStr, stateStr string
		if err := rows.Scan(&snap.SessionID, &missionStr, &stateStr, &snap.IsActive, &snap.LastUpdated); err != nil {
			return nil, err
		}
		snap.MissionJSON = []byte(missionStr)
		snap.StateJSON = []byte(stateStr)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Deactivate marks a session as ended without deleting its history.
func (r *SQLiteSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = 0, last_updated = ? WHERE session_id = ?`, time.Now(), sessionID)
	return err
}

// MarshalSnapshot is a helper building a snapshot from serializable
// mission and state values.
func MarshalSnapshot(sessionID string, missionVal, stateVal interface{}, active bool) (SessionSnapshot, error) {
	missionJSON, err := json.Marshal(missionVal)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("failed to marshal mission: %w", err)
	}
	stateJSON, err := json.Marshal(stateVal)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("failed to marshal state: %w", err)
	}
	return SessionSnapshot{
		SessionID:   sessionID,
		MissionJSON: missionJSON,
		StateJSON:   stateJSON,
		IsActive:    active,
		LastUpdated: time.Now(),
	}, nil
}
