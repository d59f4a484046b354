package mission

import (
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

// GateKey names a binary precondition for releasing an objective's reward.
type GateKey string

const (
	GateMinMessages      GateKey = "min_messages"
	GateAvgScoreAbove    GateKey = "avg_score_above"
	GateNoRecentNegative GateKey = "no_recent_negative_flags"
	GateTensionUnder     GateKey = "tension_under_control"
	GateMoodPositive     GateKey = "mood_positive"
	GateScoreStreak      GateKey = "score_streak"
	GatePersonaStable    GateKey = "persona_stable"
)

// GateResult is the recorded verdict for one gate.
type GateResult struct {
	Passed      bool      `json:"passed"`
	ReasonCode  string    `json:"reason_code,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at,omitempty"`
}

// GateState folds per-gate verdicts against the required set.
// Invariant: MetGates and UnmetGates partition RequiredGates.
type GateState struct {
	Gates               map[GateKey]GateResult `json:"gates"`
	RequiredGates       []GateKey              `json:"required_gates"`
	MetGates            []GateKey              `json:"met_gates"`
	UnmetGates          []GateKey              `json:"unmet_gates"`
	AllRequiredGatesMet bool                   `json:"all_required_gates_met"`
}

// ModifierEffect identifies the numeric adjustment a modifier applies.
type ModifierEffect string

const (
	EffectReduceRisk  ModifierEffect = "reduceRisk"
	EffectLowerWarmth ModifierEffect = "lowerWarmth"
)

// ActiveModifier is a temporary, turn-counted behavior adjustment.
// A key appears at most once in a mission's active list and a modifier
// is removed the moment RemainingTurns reaches zero.
type ActiveModifier struct {
	Key            string         `json:"key"`
	Effect         ModifierEffect `json:"effect"`
	RemainingTurns int            `json:"remaining_turns"`
	AppliedAt      time.Time      `json:"applied_at"`
	Reason         string         `json:"reason,omitempty"`
}

// RecentWindow bounds how many past turns MissionState retains for the
// drift detector.
const RecentWindow = 3

// State is the aggregate mission snapshot: the sole source of truth for
// prompt construction and reward release. It is owned by exactly one
// practice session and mutated once per accepted turn.
type State struct {
	Mood              mood.State       `json:"mood"`
	ProgressPct       int              `json:"progress_pct"`
	SuccessLikelihood int              `json:"success_likelihood"`
	StabilityScore    int              `json:"stability_score"`
	MessageCount      int              `json:"message_count"`
	AverageScore      float64          `json:"average_score"`
	LastScore         int              `json:"last_score"`
	LastFlags         []string         `json:"last_flags,omitempty"`
	GateState         *GateState       `json:"gate_state,omitempty"`
	PersonaStability  int              `json:"persona_stability"`
	LastDriftReason   string           `json:"last_drift_reason,omitempty"`
	ActiveModifiers   []ActiveModifier `json:"active_modifiers,omitempty"`

	// Rolling history feeding the drift detector, capped at RecentWindow.
	RecentScores []int            `json:"recent_scores,omitempty"`
	RecentFlags  [][]string       `json:"recent_flags,omitempty"`
	RecentTraits []map[string]int `json:"recent_traits,omitempty"`
}

// NewState creates the default mission state used at session start.
func NewState() State {
	return State{
		Mood:             mood.NewState(),
		StabilityScore:   80,
		PersonaStability: 100,
	}
}

// PushRecent appends one turn's signals to the rolling history,
// trimming to RecentWindow.
func (s *State) PushRecent(score int, flags []string, traits map[string]int) {
	s.RecentScores = append(s.RecentScores, score)
	s.RecentFlags = append(s.RecentFlags, flags)
	s.RecentTraits = append(s.RecentTraits, traits)
	if len(s.RecentScores) > RecentWindow {
		s.RecentScores = s.RecentScores[len(s.RecentScores)-RecentWindow:]
	}
	if len(s.RecentFlags) > RecentWindow {
		s.RecentFlags = s.RecentFlags[len(s.RecentFlags)-RecentWindow:]
	}
	if len(s.RecentTraits) > RecentWindow {
		s.RecentTraits = s.RecentTraits[len(s.RecentTraits)-RecentWindow:]
	}
}

// PreviousTraits returns the trait map of the turn before the latest one,
// or nil if fewer than two turns are recorded.
func (s *State) PreviousTraits() map[string]int {
	if len(s.RecentTraits) < 2 {
		return nil
	}
	return s.RecentTraits[len(s.RecentTraits)-2]
}
