// Package engine contains the per-turn mission state pipeline.
// This is the single write path to a session's MissionState.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
	"github.com/sofos1231/socialos-server/internal/tuning"
)

// Session binds one mission configuration to its evolving state.
type Session struct {
	ID      string          `json:"id"`
	Mission mission.Mission `json:"mission"`
	State   mission.State   `json:"state"`
}

// Engine orchestrates the turn pipeline: mood, derived metrics, gates,
// drift and modifiers, in that order. A session's turns must not be
// processed concurrently; the transport layer serializes them.
type Engine struct {
	turnLog *events.TurnLog
	logger  *logger.Logger
	tuning  tuning.Provider

	moodSystem     *MoodSystem
	gateSystem     *GateSystem
	rewardSystem   *RewardSystem
	driftSystem    *DriftSystem
	modifierSystem *ModifierSystem

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// NewEngine wires up the engine subsystems. It fails when the gate table
// does not cover the full objective x difficulty cross-product; that is
// a configuration error and the server must not start on it.
func NewEngine(turnLog *events.TurnLog, provider tuning.Provider, log *logger.Logger) (*Engine, error) {
	gateTable, err := rules.NewGateTable()
	if err != nil {
		return nil, fmt.Errorf("gate table validation failed: %w", err)
	}

	e := &Engine{
		turnLog: turnLog,
		logger:  log,
		tuning:  provider,

		moodSystem:     NewMoodSystem(rules.DefaultMoodTables(), turnLog, log),
		gateSystem:     NewGateSystem(gateTable, turnLog, log),
		rewardSystem:   NewRewardSystem(turnLog, log),
		driftSystem:    NewDriftSystem(turnLog, log),
		modifierSystem: NewModifierSystem(turnLog, log),

		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	return e, nil
}

// StartSession registers a new practice session with default state.
func (e *Engine) StartSession(m mission.Mission) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Mission: m,
		State:   mission.NewState(),
	}

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()

	metrics.Get().RecordSession(1)
	e.turnLog.Append(events.TurnEvent{
		ID:        events.GenerateEventID(),
		SessionID: s.ID,
		Timestamp: e.now(),
		Type:      events.EventTypeSessionStarted,
		Payload:   m,
	})
	e.logger.Event("SESSION_STARTED", s.ID, "mission "+m.ID)
	return s
}

// RestoreSession registers a previously persisted session, for
// continuation after a restart.
func (e *Engine) RestoreSession(s *Session) {
	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()
	metrics.Get().RecordSession(1)
}

// EndSession removes a session from the registry.
func (e *Engine) EndSession(sessionID string) {
	e.mu.Lock()
	_, ok := e.sessions[sessionID]
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	if ok {
		metrics.Get().RecordSession(-1)
		e.turnLog.Append(events.TurnEvent{
			ID:        events.GenerateEventID(),
			SessionID: sessionID,
			Timestamp: e.now(),
			Type:      events.EventTypeSessionCompleted,
		})
	}
}

// GetSession returns a registered session.
func (e *Engine) GetSession(sessionID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// ProcessTurn runs the full pipeline for one accepted user message and
// returns the new MissionState snapshot. It is the only mutator of
// session state.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID string, sig mission.TurnSignals) (mission.State, error) {
	started := e.now()

	s, ok := e.GetSession(sessionID)
	if !ok {
		return mission.State{}, fmt.Errorf("unknown session %s", sessionID)
	}

	t := e.tuning.Tuning(ctx)
	prev := s.State
	next := prev
	now := e.now()
	turn := prev.MessageCount + 1

	// 1. Mood.
	next.Mood = e.moodSystem.Update(sessionID, turn, prev.Mood, rules.MoodSignals{
		Score:      sig.Score,
		Flags:      sig.Flags,
		Traits:     sig.Traits,
		PrevTraits: latestTraits(prev),
		Now:        now,
	}, s.Mission.Difficulty)

	// 2. Turn bookkeeping and derived metrics.
	next.MessageCount = turn
	next.LastScore = sig.Score
	next.LastFlags = sig.Flags
	next.AverageScore = (prev.AverageScore*float64(prev.MessageCount) + float64(sig.Score)) / float64(turn)
	next.PushRecent(sig.Score, sig.Flags, sig.Traits)

	next.ProgressPct = rules.ProgressPct(next.MessageCount, s.Mission.MaxMessages)
	next.SuccessLikelihood = rules.SuccessLikelihood(next.AverageScore, next.ProgressPct, s.Mission.Difficulty)
	next.StabilityScore = rules.StabilityScore(next.RecentScores, next.Mood.IsStable)

	// 3. Gates.
	next.GateState = e.gateSystem.Evaluate(sessionID, turn, s.Mission.Objective, sig.GateResults, now)

	// 4. Persona drift.
	driftCtx := rules.StabilityContext{
		Style:        s.Mission.Style,
		Dynamics:     s.Mission.Dynamics,
		Difficulty:   s.Mission.Difficulty,
		Mood:         next.Mood,
		RecentScores: next.RecentScores,
		RecentFlags:  next.RecentFlags,
		RecentTraits: next.RecentTraits,
	}
	stability, modifierEvents := e.driftSystem.Analyze(sessionID, turn, driftCtx, t)
	next.PersonaStability = stability.PersonaStability
	if stability.DriftReason != "" {
		next.LastDriftReason = stability.DriftReason
	}

	// 5. Modifier lifecycle.
	next.ActiveModifiers = e.modifierSystem.Update(sessionID, turn, modifierEvents, prev.ActiveModifiers, t.ModifierConfig, now)

	s.State = next
	e.turnLog.Append(events.TurnEvent{
		ID:        events.GenerateEventID(),
		SessionID: sessionID,
		Timestamp: now,
		Type:      events.EventTypeTurnProcessed,
		Turn:      turn,
		Payload:   next,
	})
	metrics.Get().RecordTurn(e.now().Sub(started))

	return next, nil
}

// RewardPermissions is the read-only release query for a session. It
// consumes the current snapshot and never mutates it.
func (e *Engine) RewardPermissions(sessionID string) (rules.RewardPermissions, error) {
	s, ok := e.GetSession(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %s", sessionID)
	}
	return e.rewardSystem.Permissions(sessionID, &s.State, s.Mission.Objective), nil
}

// ModifierHints projects a session's active modifiers onto the given
// behavior dials and returns the prompt hints. Read-only.
func (e *Engine) ModifierHints(ctx context.Context, sessionID string, riskIndex, warmth int) (rules.Adjustment, error) {
	s, ok := e.GetSession(sessionID)
	if !ok {
		return rules.Adjustment{}, fmt.Errorf("unknown session %s", sessionID)
	}
	t := e.tuning.Tuning(ctx)
	return rules.ApplyModifiers(s.State.ActiveModifiers, riskIndex, warmth, t.ModifierConfig), nil
}

// AdvisoryConditions returns the free-text gate conditions for a
// session's objective, for prompt injection only.
func (e *Engine) AdvisoryConditions(sessionID string) []string {
	s, ok := e.GetSession(sessionID)
	if !ok || s.Mission.Objective == nil {
		return nil
	}
	return e.gateSystem.AdvisoryConditions(s.Mission.Objective)
}

func latestTraits(s mission.State) map[string]int {
	if len(s.RecentTraits) == 0 {
		return nil
	}
	return s.RecentTraits[len(s.RecentTraits)-1]
}
