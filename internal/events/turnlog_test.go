package events

import (
	"testing"
	"time"
)

func stamp(minute int) time.Time {
	return time.Date(2026, 8, 1, 12, minute, 0, 0, time.UTC)
}

func TestTurnLog_AppendAndQuery(t *testing.T) {
	log := NewTurnLog(nil)

	log.Append(TurnEvent{ID: "1", SessionID: "s1", Timestamp: stamp(0), Type: EventTypeSessionStarted})
	log.Append(TurnEvent{ID: "2", SessionID: "s1", Timestamp: stamp(1), Type: EventTypeTurnProcessed, Turn: 1})
	log.Append(TurnEvent{ID: "3", SessionID: "s2", Timestamp: stamp(2), Type: EventTypeTurnProcessed, Turn: 1})
	log.Append(TurnEvent{ID: "4", SessionID: "s1", Timestamp: stamp(3), Type: EventTypeMoodChange, Turn: 1})

	bySession := log.GetBySession("s1")
	if len(bySession) != 3 {
		t.Fatalf("got %d events for s1, want 3", len(bySession))
	}
	// Append order is preserved.
	if bySession[0].ID != "1" || bySession[2].ID != "4" {
		t.Errorf("events out of order: %v", bySession)
	}

	byType := log.GetByType(EventTypeTurnProcessed)
	if len(byType) != 2 {
		t.Errorf("got %d TURN_PROCESSED events, want 2", len(byType))
	}

	if len(log.Replay()) != 4 {
		t.Errorf("replay returned %d events, want 4", len(log.Replay()))
	}
}

type captivePersister struct {
	got chan TurnEvent
}

func (p *captivePersister) Append(event TurnEvent) error {
	p.got <- event
	return nil
}

func TestTurnLog_WritesThroughToPersister(t *testing.T) {
	p := &captivePersister{got: make(chan TurnEvent, 1)}
	log := NewTurnLog(p)

	log.Append(TurnEvent{ID: "1", SessionID: "s1", Type: EventTypeSessionStarted})

	select {
	case e := <-p.got:
		if e.ID != "1" {
			t.Errorf("persisted event id = %q, want 1", e.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("persister was never called")
	}
}

func TestGenerateEventID_Unique(t *testing.T) {
	a, b := GenerateEventID(), GenerateEventID()
	if a == "" || a == b {
		t.Errorf("ids %q and %q should be distinct and non-empty", a, b)
	}
}
