// Package engine - gate_system.go
// Resolves the required-gate set for the active objective and folds the
// gate-check collaborator's verdicts into GateState.
package engine

import (
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
)

// GateEvaluatedPayload records a gate evaluation for audit.
type GateEvaluatedPayload struct {
	Required []mission.GateKey `json:"required"`
	Met      []mission.GateKey `json:"met"`
	Unmet    []mission.GateKey `json:"unmet"`
	AllMet   bool              `json:"all_met"`
}

// GateSystem evaluates gates against the validated requirement table.
type GateSystem struct {
	table   *rules.GateTable
	turnLog *events.TurnLog
	logger  *logger.Logger
}

// NewGateSystem creates a gate system around a validated table.
func NewGateSystem(table *rules.GateTable, turnLog *events.TurnLog, log *logger.Logger) *GateSystem {
	return &GateSystem{table: table, turnLog: turnLog, logger: log}
}

// Evaluate folds the raw verdicts for the objective's required gates.
// Returns nil when the mission has no objective; gate state only exists
// once an objective requiring gates is set.
func (gs *GateSystem) Evaluate(sessionID string, turn int, objective *mission.Objective, verdicts map[mission.GateKey]bool, now time.Time) *mission.GateState {
	if objective == nil {
		return nil
	}

	req, ok := gs.table.Resolve(objective.Kind, objective.Difficulty)
	if !ok {
		// Cannot happen after table validation; kept as a guard against
		// objectives constructed outside the enumerated sets.
		gs.logger.Error("no gate requirement for objective " + string(objective.Kind) + " at " + string(objective.Difficulty))
		return nil
	}

	state := rules.EvaluateGates(req, verdicts, now)

	gs.turnLog.Append(events.TurnEvent{
		ID:        events.GenerateEventID(),
		SessionID: sessionID,
		Timestamp: now,
		Type:      events.EventTypeGateEvaluated,
		Turn:      turn,
		Payload: GateEvaluatedPayload{
			Required: state.RequiredGates,
			Met:      state.MetGates,
			Unmet:    state.UnmetGates,
			AllMet:   state.AllRequiredGatesMet,
		},
	})

	if state.AllRequiredGatesMet {
		metrics.Get().RecordGatesUnlocked()
		gs.logger.Event("GATES_MET", sessionID, "all required gates met")
	}

	return state
}

// AdvisoryConditions returns the objective's free-text conditions for
// prompt injection. Advisory only; never machine-evaluated.
func (gs *GateSystem) AdvisoryConditions(objective *mission.Objective) []string {
	req, ok := gs.table.Resolve(objective.Kind, objective.Difficulty)
	if !ok {
		return nil
	}
	return req.AdditionalConditions
}
