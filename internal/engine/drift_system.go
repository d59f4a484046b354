// Package engine - drift_system.go
// Compares configured persona style against observed behavior and turns
// detected anomalies into modifier events.
package engine

import (
	"fmt"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
	"github.com/sofos1231/socialos-server/internal/tuning"
)

// DriftDetectedPayload records a persona drift observation for audit.
type DriftDetectedPayload struct {
	PersonaStability int    `json:"persona_stability"`
	Reason           string `json:"reason"`
}

// DriftSystem runs the persona stability and anomaly checks.
type DriftSystem struct {
	turnLog *events.TurnLog
	logger  *logger.Logger
}

// NewDriftSystem creates the drift detector.
func NewDriftSystem(turnLog *events.TurnLog, log *logger.Logger) *DriftSystem {
	return &DriftSystem{turnLog: turnLog, logger: log}
}

// Analyze computes persona stability and detects modifier events for
// one turn, using the current tuning.
func (ds *DriftSystem) Analyze(sessionID string, turn int, ctx rules.StabilityContext, t tuning.Tuning) (rules.StabilityResult, []rules.ModifierEvent) {
	result := rules.ComputeStability(ctx, t.DriftPenalties)
	modifierEvents := rules.DetectModifierEvents(ctx, t.EventThresholds)

	if result.DriftReason != "" {
		metrics.Get().RecordDrift()
		ds.turnLog.Append(events.TurnEvent{
			ID:        events.GenerateEventID(),
			SessionID: sessionID,
			Timestamp: time.Now(),
			Type:      events.EventTypeDriftDetected,
			Turn:      turn,
			Payload: DriftDetectedPayload{
				PersonaStability: result.PersonaStability,
				Reason:           result.DriftReason,
			},
		})
		ds.logger.Event("DRIFT_DETECTED", sessionID,
			fmt.Sprintf("stability %d, reason %s", result.PersonaStability, result.DriftReason))
	}

	return result, modifierEvents
}
