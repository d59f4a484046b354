// Package engine - modifier_system.go
// Advances the active modifier list by one turn and records additions
// and expiries on the turn log.
package engine

import (
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
)

// ModifierChangePayload records one modifier addition or expiry.
type ModifierChangePayload struct {
	Key            string `json:"key"`
	Effect         string `json:"effect,omitempty"`
	RemainingTurns int    `json:"remaining_turns,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// ModifierSystem owns the modifier lifecycle step of the pipeline.
type ModifierSystem struct {
	turnLog *events.TurnLog
	logger  *logger.Logger
}

// NewModifierSystem creates the modifier lifecycle system.
func NewModifierSystem(turnLog *events.TurnLog, log *logger.Logger) *ModifierSystem {
	return &ModifierSystem{turnLog: turnLog, logger: log}
}

// Update decays, expires and appends modifiers, logging the difference
// between the old and new lists.
func (ms *ModifierSystem) Update(sessionID string, turn int, evs []rules.ModifierEvent, existing []mission.ActiveModifier, cfg rules.ModifierConfig, now time.Time) []mission.ActiveModifier {
	next := rules.UpdateModifiers(evs, existing, cfg, now)

	for _, m := range next {
		if !containsKey(existing, m.Key) {
			metrics.Get().RecordModifierCreated()
			ms.turnLog.Append(events.TurnEvent{
				ID:        events.GenerateEventID(),
				SessionID: sessionID,
				Timestamp: now,
				Type:      events.EventTypeModifierApplied,
				Turn:      turn,
				Payload: ModifierChangePayload{
					Key:            m.Key,
					Effect:         string(m.Effect),
					RemainingTurns: m.RemainingTurns,
					Reason:         m.Reason,
				},
			})
			ms.logger.Event("MODIFIER_APPLIED", sessionID, m.Key)
		}
	}

	for _, m := range existing {
		if !containsKey(next, m.Key) {
			ms.turnLog.Append(events.TurnEvent{
				ID:        events.GenerateEventID(),
				SessionID: sessionID,
				Timestamp: now,
				Type:      events.EventTypeModifierExpired,
				Turn:      turn,
				Payload:   ModifierChangePayload{Key: m.Key},
			})
			ms.logger.Event("MODIFIER_EXPIRED", sessionID, m.Key)
		}
	}

	return next
}

func containsKey(mods []mission.ActiveModifier, key string) bool {
	for _, m := range mods {
		if m.Key == key {
			return true
		}
	}
	return false
}
