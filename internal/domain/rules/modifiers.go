package rules

import (
	"fmt"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

// ModifierConfig tunes event severity cutoffs and effect magnitudes.
type ModifierConfig struct {
	TensionSpikeSeverity  float64 `json:"tension_spike_severity"`
	MoodDropSeverity      float64 `json:"mood_drop_severity"`
	ScoreCollapseSeverity float64 `json:"score_collapse_severity"`
	ReduceRiskDelta       int     `json:"reduce_risk_delta"`
	LowerWarmthDelta      int     `json:"lower_warmth_delta"`
}

// DefaultModifierConfig is the hard-coded fallback tuning.
func DefaultModifierConfig() ModifierConfig {
	return ModifierConfig{
		TensionSpikeSeverity:  0.6,
		MoodDropSeverity:      0.5,
		ScoreCollapseSeverity: 0.5,
		ReduceRiskDelta:       20,
		LowerWarmthDelta:      15,
	}
}

// Keys of the modifiers the lifecycle can create.
const (
	ModifierLowerRisk   = "lowerRiskForNext3Turns"
	ModifierLowerWarmth = "lowerWarmthForNext2Turns"
	ModifierPlaySafer   = "playSaferForNext3Turns"
)

// UpdateModifiers advances the modifier list by one turn. Strictly in
// order: decay every existing modifier, drop the expired ones, then
// append a modifier per qualifying event unless its key already exists.
// There is deliberately no cap on concurrent modifiers and no merge of
// same-effect entries; stacked entries stay separate keyed records.
func UpdateModifiers(events []ModifierEvent, existing []mission.ActiveModifier, cfg ModifierConfig, now time.Time) []mission.ActiveModifier {
	surviving := make([]mission.ActiveModifier, 0, len(existing)+len(events))
	for _, m := range existing {
		m.RemainingTurns--
		if m.RemainingTurns <= 0 {
			continue
		}
		surviving = append(surviving, m)
	}

	for _, ev := range events {
		m, ok := modifierForEvent(ev, cfg, now)
		if !ok {
			continue
		}
		if hasModifier(surviving, m.Key) {
			continue
		}
		surviving = append(surviving, m)
	}

	return surviving
}

// modifierForEvent translates one event into its modifier when the
// severity clears the event-specific cutoff.
func modifierForEvent(ev ModifierEvent, cfg ModifierConfig, now time.Time) (mission.ActiveModifier, bool) {
	switch ev.Type {
	case EventTensionSpike:
		if ev.Severity <= cfg.TensionSpikeSeverity {
			return mission.ActiveModifier{}, false
		}
		return mission.ActiveModifier{
			Key:            ModifierLowerRisk,
			Effect:         mission.EffectReduceRisk,
			RemainingTurns: 3,
			AppliedAt:      now,
			Reason:         "tension spiked; pull back on risky moves",
		}, true
	case EventMoodDrop:
		if ev.Severity <= cfg.MoodDropSeverity {
			return mission.ActiveModifier{}, false
		}
		return mission.ActiveModifier{
			Key:            ModifierLowerWarmth,
			Effect:         mission.EffectLowerWarmth,
			RemainingTurns: 2,
			AppliedAt:      now,
			Reason:         "her mood dropped; she cools off for a bit",
		}, true
	case EventScoreCollapse:
		if ev.Severity <= cfg.ScoreCollapseSeverity {
			return mission.ActiveModifier{}, false
		}
		return mission.ActiveModifier{
			Key:            ModifierPlaySafer,
			Effect:         mission.EffectReduceRisk,
			RemainingTurns: 3,
			AppliedAt:      now,
			Reason:         "scores collapsed; play it safer",
		}, true
	}
	// flag_negative feeds the stability score but creates no modifier.
	return mission.ActiveModifier{}, false
}

func hasModifier(mods []mission.ActiveModifier, key string) bool {
	for _, m := range mods {
		if m.Key == key {
			return true
		}
	}
	return false
}

// Adjustment is the read-only projection of active modifiers onto
// caller-supplied behavior dials.
type Adjustment struct {
	RiskIndex int
	Warmth    int
	Hints     []string
}

// ApplyModifiers projects the active modifiers onto the given risk and
// warmth values. Stateless: calling it any number of times has no side
// effects, and stacked modifiers of the same effect each apply their
// delta (floored at 0).
func ApplyModifiers(mods []mission.ActiveModifier, riskIndex, warmth int, cfg ModifierConfig) Adjustment {
	adj := Adjustment{RiskIndex: riskIndex, Warmth: warmth}
	for _, m := range mods {
		switch m.Effect {
		case mission.EffectReduceRisk:
			adj.RiskIndex -= cfg.ReduceRiskDelta
			if adj.RiskIndex < 0 {
				adj.RiskIndex = 0
			}
			adj.Hints = append(adj.Hints, fmt.Sprintf("Keep suggestions low-risk for the next %d turns.", m.RemainingTurns))
		case mission.EffectLowerWarmth:
			adj.Warmth -= cfg.LowerWarmthDelta
			if adj.Warmth < 0 {
				adj.Warmth = 0
			}
			adj.Hints = append(adj.Hints, fmt.Sprintf("Respond with less warmth for the next %d turns.", m.RemainingTurns))
		}
	}
	return adj
}
