package rules

import (
	"strings"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

// StabilityContext is the transient, read-only view the drift detector
// works on. It is assembled fresh each turn from the mission config and
// the last few turns of observed signals, and discarded afterwards.
type StabilityContext struct {
	Style        mission.PersonaStyle
	Dynamics     mission.Dynamics
	Difficulty   mission.Difficulty
	Mood         mood.State
	RecentScores []int
	RecentFlags  [][]string
	RecentTraits []map[string]int
}

// DriftPenalties holds the magnitude of each persona drift penalty.
// Magnitudes are tunable at runtime; the shape of each rule is fixed.
type DriftPenalties struct {
	FlirtyColdMood        int `json:"flirty_cold_mood"`
	WarmColdMood          int `json:"warm_cold_mood"`
	HighFlirtinessCold    int `json:"high_flirtiness_cold"`
	HighVulnerabilityCold int `json:"high_vulnerability_cold"`
	LowScoresWarmRead     int `json:"low_scores_warm_read"`
	NegativeFlagsWarm     int `json:"negative_flags_warm"`
}

// DefaultDriftPenalties are the hard-coded fallbacks used when no config
// collaborator is available.
func DefaultDriftPenalties() DriftPenalties {
	return DriftPenalties{
		FlirtyColdMood:        30,
		WarmColdMood:          15,
		HighFlirtinessCold:    20,
		HighVulnerabilityCold: 15,
		LowScoresWarmRead:     20,
		NegativeFlagsWarm:     10,
	}
}

// StabilityResult carries the persona stability score and the first
// detected conflict, if any.
type StabilityResult struct {
	PersonaStability int
	DriftReason      string
}

// ComputeStability scores how consistent the persona's observed behavior
// is with its configured style and dynamics. It starts at 100 and
// applies a fixed, ordered sequence of penalty checks. All matching
// penalties accumulate numerically, but only the first detected conflict
// is reported as the reason.
func ComputeStability(ctx StabilityContext, p DriftPenalties) StabilityResult {
	score := 100
	reason := ""

	hostile := ctx.Mood.CurrentMood == mood.MoodCold || ctx.Mood.CurrentMood == mood.MoodAnnoyed

	// Style vs mood.
	if ctx.Style == mission.StyleFlirty && hostile {
		score -= p.FlirtyColdMood
		if reason == "" {
			reason = "flirty_style_cold_mood"
		}
	}
	if ctx.Style == mission.StyleWarm && ctx.Mood.CurrentMood == mood.MoodCold {
		score -= p.WarmColdMood
		if reason == "" {
			reason = "warm_style_cold_mood"
		}
	}

	// Dynamics vs mood.
	if ctx.Dynamics.Flirtiveness > 70 && hostile {
		score -= p.HighFlirtinessCold
		if reason == "" {
			reason = "high_flirtiveness_cold_mood"
		}
	}
	if ctx.Dynamics.Vulnerability > 70 && ctx.Mood.CurrentMood == mood.MoodCold {
		score -= p.HighVulnerabilityCold
		if reason == "" {
			reason = "high_vulnerability_cold_mood"
		}
	}

	// Score trend vs style: low recent scores while the persona reads warm.
	if len(ctx.RecentScores) >= 2 && warmRead(ctx) && averageInt(ctx.RecentScores) < 40 {
		score -= p.LowScoresWarmRead
		if reason == "" {
			reason = "low_scores_warm_read"
		}
	}

	// Negative flags vs style.
	if warmStyle(ctx.Style) && hasNegativeFlag(ctx.RecentFlags) {
		score -= p.NegativeFlagsWarm
		if reason == "" {
			reason = "negative_flags_warm_style"
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return StabilityResult{PersonaStability: score, DriftReason: reason}
}

func warmStyle(s mission.PersonaStyle) bool {
	return s == mission.StyleWarm || s == mission.StyleFlirty
}

// warmRead reports whether the persona currently reads warm, either by
// configured style or by observed mood.
func warmRead(ctx StabilityContext) bool {
	if warmStyle(ctx.Style) {
		return true
	}
	return ctx.Mood.CurrentMood == mood.MoodWarm || ctx.Mood.CurrentMood == mood.MoodExcited
}

func hasNegativeFlag(recent [][]string) bool {
	return countNegativeFlags(recent) > 0
}

func countNegativeFlags(recent [][]string) int {
	n := 0
	for _, turnFlags := range recent {
		for _, f := range turnFlags {
			lower := strings.ToLower(f)
			if strings.Contains(lower, "negative") || strings.Contains(lower, "low-impact") || strings.Contains(lower, "low_impact") {
				n++
			}
		}
	}
	return n
}

func averageInt(vs []int) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

// ModifierEventType identifies a detected behavior anomaly.
type ModifierEventType string

const (
	EventTensionSpike  ModifierEventType = "tension_spike"
	EventMoodDrop      ModifierEventType = "mood_drop"
	EventScoreCollapse ModifierEventType = "score_collapse"
	EventFlagNegative  ModifierEventType = "flag_negative"
)

// ModifierEvent is produced by the drift detector and consumed
// immediately by the modifier lifecycle; it is never stored.
type ModifierEvent struct {
	Type     ModifierEventType
	Severity float64 // 0-1
	Context  string
}

// EventThresholds tunes when each modifier event fires.
type EventThresholds struct {
	TensionSpike         float64 `json:"tension_spike"`
	MoodDropPositivity   int     `json:"mood_drop_positivity"`
	ScoreCollapseDrop    int     `json:"score_collapse_drop"`
	ScoreCollapseDivisor float64 `json:"score_collapse_divisor"`
	NegativeFlagCount    int     `json:"negative_flag_count"`
	NegativeFlagDivisor  float64 `json:"negative_flag_divisor"`
}

// DefaultEventThresholds are the hard-coded fallbacks.
func DefaultEventThresholds() EventThresholds {
	return EventThresholds{
		TensionSpike:         0.7,
		MoodDropPositivity:   40,
		ScoreCollapseDrop:    25,
		ScoreCollapseDivisor: 50,
		NegativeFlagCount:    3,
		NegativeFlagDivisor:  5,
	}
}

// DetectModifierEvents scans the context for behavior anomalies. Several
// distinct event types may fire in the same turn; each type fires at
// most once.
func DetectModifierEvents(ctx StabilityContext, th EventThresholds) []ModifierEvent {
	var events []ModifierEvent

	if ctx.Mood.TensionLevel > th.TensionSpike {
		events = append(events, ModifierEvent{
			Type:     EventTensionSpike,
			Severity: ctx.Mood.TensionLevel,
			Context:  "tension above spike threshold",
		})
	}

	if ctx.Mood.CurrentMood.Negative() {
		severity := 0.6
		if ctx.Mood.PositivityPct < th.MoodDropPositivity {
			severity = 0.9
		}
		events = append(events, ModifierEvent{
			Type:     EventMoodDrop,
			Severity: severity,
			Context:  "mood turned " + string(ctx.Mood.CurrentMood),
		})
	}

	if n := len(ctx.RecentScores); n >= 2 {
		drop := ctx.RecentScores[n-2] - ctx.RecentScores[n-1]
		if drop > th.ScoreCollapseDrop {
			severity := float64(drop) / th.ScoreCollapseDivisor
			if severity > 1.0 {
				severity = 1.0
			}
			events = append(events, ModifierEvent{
				Type:     EventScoreCollapse,
				Severity: severity,
				Context:  "score dropped sharply between turns",
			})
		}
	}

	if count := countNegativeFlags(ctx.RecentFlags); count >= th.NegativeFlagCount {
		severity := float64(count) / th.NegativeFlagDivisor
		if severity > 1.0 {
			severity = 1.0
		}
		events = append(events, ModifierEvent{
			Type:     EventFlagNegative,
			Severity: severity,
			Context:  "burst of negative flags",
		})
	}

	return events
}
