package rules

import (
	"math"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

// MoodSignals is one turn's input to the mood state machine.
type MoodSignals struct {
	Score      int
	Flags      []string
	Traits     map[string]int // current turn, nil if absent
	PrevTraits map[string]int // previous turn, nil if absent
	Now        time.Time      // stamp for LastChangedAt
}

// Positivity smoothing: exponential moving average with a fixed
// learning rate applied every turn.
const positivityLearningRate = 0.3

// UpdateMood derives the next mood state from the current one and one
// turn's signals. It is a pure function of its inputs: identical inputs
// always yield identical output, which session-continuation replay
// depends on. It never fails; missing optional inputs skip their step.
//
// Steps apply in strict order and later steps overwrite earlier ones:
//  1. score range lookup (applied only on meaningful change)
//  2. first-match-wins flag rule
//  3. first-match-wins trait trend rule
//  4. tension recompute from difficulty thresholds
//  5. unconditional positivity smoothing
//  6. stability determination against the start-of-turn state
func UpdateMood(current mood.State, sig MoodSignals, diff mission.Difficulty, tables *MoodTables) mood.State {
	start := current
	next := current

	// Step 1: score-to-mood. Skipped when the target triple is within
	// tolerance of the current mood, to avoid instability flapping on
	// near-identical repeated scores.
	target := tables.LookupScore(sig.Score)
	if meaningfulChange(next, target) {
		next.CurrentMood = target.Mood
		next.PositivityPct = target.PositivityPct
		next.TensionLevel = target.TensionLevel
		next.LastChangeReason = "score_range"
		next.LastChangedAt = sig.Now
	}

	// Step 2: flag-to-mood, first match wins.
	if rule, ok := tables.MatchFlag(sig.Flags); ok {
		if rule.Mood != "" {
			next.CurrentMood = rule.Mood
		}
		next.PositivityPct += rule.PositivityDelta
		next.TensionLevel += rule.TensionDelta
		next.LastChangeReason = rule.Reason
		next.LastChangedAt = sig.Now
		next.Clamp()
	}

	// Step 3: trait-trend-to-mood, needs both current and previous values.
	if rule, ok := tables.MatchTrait(sig.Traits, sig.PrevTraits); ok {
		next.CurrentMood = rule.Mood
		next.PositivityPct += rule.PositivityDelta
		next.TensionLevel += rule.TensionDelta
		next.LastChangeReason = rule.Reason
		next.LastChangedAt = sig.Now
		next.Clamp()
	}

	// Step 4: tension recompute from difficulty thresholds.
	if diff.HasThresholds {
		next.TensionLevel = recomputeTension(next.TensionLevel, sig.Score, diff)
	}

	// Step 5: positivity smoothing, applied every turn.
	next.PositivityPct = mood.ClampPct(int(math.Round(
		float64(next.PositivityPct)*(1-positivityLearningRate) + float64(sig.Score)*positivityLearningRate)))

	// Step 6: stability, comparing the final state to the turn start.
	moodChanged := next.CurrentMood != start.CurrentMood
	posJump := absInt(next.PositivityPct-start.PositivityPct) > 15
	tensionJump := math.Abs(next.TensionLevel-start.TensionLevel) > 0.3
	next.IsStable = !(moodChanged || posJump || tensionJump)

	next.Clamp()
	return next
}

// meaningfulChange reports whether the score-range triple differs enough
// from the current mood to apply: name differs, positivity differs by
// more than 10, or tension differs by more than 0.2.
func meaningfulChange(s mood.State, target ScoreRange) bool {
	if s.CurrentMood != target.Mood {
		return true
	}
	if absInt(s.PositivityPct-target.PositivityPct) > 10 {
		return true
	}
	return math.Abs(s.TensionLevel-target.TensionLevel) > 0.2
}

// recomputeTension applies the difficulty pressure model: below the fail
// threshold tension climbs, at or above the success threshold it eases,
// and in between it interpolates linearly. The floor is 0.1 so a mission
// with thresholds never fully relaxes.
func recomputeTension(tension float64, score int, diff mission.Difficulty) float64 {
	switch {
	case score < diff.FailThreshold:
		tension += 0.2
		if tension > 1.0 {
			tension = 1.0
		}
	case score >= diff.SuccessThreshold:
		tension -= 0.15
		if tension < 0.1 {
			tension = 0.1
		}
	default:
		spread := diff.SuccessThreshold - diff.FailThreshold
		if spread > 0 {
			distance := float64(score-diff.FailThreshold) / float64(spread)
			tension += distance*0.3 - 0.15
		}
		if tension < 0.1 {
			tension = 0.1
		}
		if tension > 1.0 {
			tension = 1.0
		}
	}
	return tension
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
