// Package engine - mood_system.go
// Applies the mood mapping tables to one turn's signals and records
// mood transitions on the turn log.
package engine

import (
	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/mood"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
)

// MoodChangePayload records a mood transition for audit.
type MoodChangePayload struct {
	PreviousMood  mood.Mood `json:"previous_mood"`
	NewMood       mood.Mood `json:"new_mood"`
	PositivityPct int       `json:"positivity_pct"`
	TensionLevel  float64   `json:"tension_level"`
	Reason        string    `json:"reason,omitempty"`
}

// MoodSystem runs the pure mood update and emits MoodChange events.
type MoodSystem struct {
	tables  *rules.MoodTables
	turnLog *events.TurnLog
	logger  *logger.Logger
}

// NewMoodSystem creates a mood system around an immutable table set.
func NewMoodSystem(tables *rules.MoodTables, turnLog *events.TurnLog, log *logger.Logger) *MoodSystem {
	return &MoodSystem{tables: tables, turnLog: turnLog, logger: log}
}

// Update derives the next mood state and logs the transition when the
// mood name changed.
func (ms *MoodSystem) Update(sessionID string, turn int, current mood.State, sig rules.MoodSignals, diff mission.Difficulty) mood.State {
	next := rules.UpdateMood(current, sig, diff, ms.tables)

	if next.CurrentMood != current.CurrentMood {
		ms.turnLog.Append(events.TurnEvent{
			ID:        events.GenerateEventID(),
			SessionID: sessionID,
			Timestamp: sig.Now,
			Type:      events.EventTypeMoodChange,
			Turn:      turn,
			Payload: MoodChangePayload{
				PreviousMood:  current.CurrentMood,
				NewMood:       next.CurrentMood,
				PositivityPct: next.PositivityPct,
				TensionLevel:  next.TensionLevel,
				Reason:        next.LastChangeReason,
			},
		})
		ms.logger.Event("MOOD_CHANGE", sessionID,
			string(current.CurrentMood)+" -> "+string(next.CurrentMood)+" ("+next.LastChangeReason+")")
	}

	return next
}
