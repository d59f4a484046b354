// Package events provides the append-only turn log for the mission
// engine: an immutable record of every state transition, usable for
// session audit and replay.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
)

// EventType defines the category of a turn event.
type EventType string

const (
	EventTypeSessionStarted   EventType = "SESSION_STARTED"
	EventTypeTurnProcessed    EventType = "TURN_PROCESSED"
	EventTypeMoodChange       EventType = "MOOD_CHANGE"
	EventTypeGateEvaluated    EventType = "GATE_EVALUATED"
	EventTypeDriftDetected    EventType = "DRIFT_DETECTED"
	EventTypeModifierApplied  EventType = "MODIFIER_APPLIED"
	EventTypeModifierExpired  EventType = "MODIFIER_EXPIRED"
	EventTypeRewardDecision   EventType = "REWARD_DECISION"
	EventTypeSessionCompleted EventType = "SESSION_COMPLETED"
)

// TurnEvent is an immutable record of one state transition.
type TurnEvent struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Turn      int         `json:"turn"` // message count at emission time
	Payload   interface{} `json:"payload,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event TurnEvent) error
}

// TurnLog is the in-memory append-only log of turn events, with an
// optional write-through persister.
type TurnLog struct {
	mu        sync.RWMutex
	events    []TurnEvent
	persister EventPersister
}

// NewTurnLog creates a new turn log with an optional persister.
func NewTurnLog(persister EventPersister) *TurnLog {
	return &TurnLog{
		events:    make([]TurnEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (tl *TurnLog) Append(event TurnEvent) {
	tl.mu.Lock()
	tl.events = append(tl.events, event)
	tl.mu.Unlock()

	if tl.persister != nil {
		// Write through to durable storage off the turn path.
		go func(e TurnEvent) {
			metrics.Get().RecordEventWrite(tl.persister.Append(e))
		}(event)
	}
}

// GetBySession returns all events recorded for one session, in order.
func (tl *TurnLog) GetBySession(sessionID string) []TurnEvent {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	var result []TurnEvent
	for _, e := range tl.events {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of one type across sessions.
func (tl *TurnLog) GetByType(t EventType) []TurnEvent {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	var result []TurnEvent
	for _, e := range tl.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full event history.
func (tl *TurnLog) Replay() []TurnEvent {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return tl.events
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
