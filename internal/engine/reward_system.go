// Package engine - reward_system.go
// Read-only reward release decisions; not part of the snapshot pipeline.
package engine

import (
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
)

// RewardSystem answers release queries against the current snapshot.
type RewardSystem struct {
	turnLog *events.TurnLog
	logger  *logger.Logger
}

// NewRewardSystem creates the reward decision system.
func NewRewardSystem(turnLog *events.TurnLog, log *logger.Logger) *RewardSystem {
	return &RewardSystem{turnLog: turnLog, logger: log}
}

// Permissions runs the fail-closed decision table and logs the verdict.
func (rs *RewardSystem) Permissions(sessionID string, state *mission.State, objective *mission.Objective) rules.RewardPermissions {
	perms := rules.RewardPermissionsFor(state, objective)

	rs.turnLog.Append(events.TurnEvent{
		ID:        events.GenerateEventID(),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Type:      events.EventTypeRewardDecision,
		Payload:   perms,
	})

	return perms
}
