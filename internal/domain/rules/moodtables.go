// Package rules contains the pure calculation logic for the mission
// state engine. This package is PURE and must NOT import any
// infrastructure packages.
package rules

import (
	"regexp"
	"strings"

	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

// ScoreRange maps a half-open score interval to a target mood triple.
// Ranges are non-overlapping and cover [0,100]; the final range is
// closed at 100.
type ScoreRange struct {
	Min, Max      int // [Min, Max), except the last row which includes Max
	Mood          mood.Mood
	PositivityPct int
	TensionLevel  float64
}

// MatchKind selects how a FlagRule pattern is compared against a flag.
type MatchKind int

const (
	MatchExact MatchKind = iota // case-insensitive equality
	MatchSubstring
	MatchRegex
)

// FlagRule shifts the mood when a turn flag matches its pattern.
// Rule order is semantically significant: the first rule matching any
// flag wins and scanning stops.
type FlagRule struct {
	Kind            MatchKind
	Pattern         string
	Mood            mood.Mood // empty string keeps the current mood
	PositivityDelta int
	TensionDelta    float64
	Reason          string

	re *regexp.Regexp
}

// TraitTrend classifies the movement of one trait across two turns.
type TraitTrend string

const (
	TrendIncreasing TraitTrend = "increasing" // delta > +10
	TrendDecreasing TraitTrend = "decreasing" // delta < -10
	TrendHigh       TraitTrend = "high"       // absolute value >= 80
	TrendLow        TraitTrend = "low"        // absolute value <= 30
)

// TraitRule shifts the mood when a trait exhibits a trend. Only the
// first matching rule applies; one trait per turn.
type TraitRule struct {
	Trait           string
	Trend           TraitTrend
	Mood            mood.Mood
	PositivityDelta int
	TensionDelta    float64
	Reason          string
}

// MoodTables bundles the ordered lookup tables driving the mood state
// machine. Tables are built once and injected; the update function
// never mutates them.
type MoodTables struct {
	ScoreRanges []ScoreRange
	FlagRules   []FlagRule
	TraitRules  []TraitRule
}

// DefaultMoodTables returns the standard mapping tables.
func DefaultMoodTables() *MoodTables {
	t := &MoodTables{
		ScoreRanges: []ScoreRange{
			{Min: 0, Max: 30, Mood: mood.MoodCold, PositivityPct: 20, TensionLevel: 0.8},
			{Min: 30, Max: 50, Mood: mood.MoodBored, PositivityPct: 35, TensionLevel: 0.6},
			{Min: 50, Max: 70, Mood: mood.MoodNeutral, PositivityPct: 55, TensionLevel: 0.4},
			{Min: 70, Max: 85, Mood: mood.MoodInterested, PositivityPct: 72, TensionLevel: 0.3},
			{Min: 85, Max: 100, Mood: mood.MoodExcited, PositivityPct: 90, TensionLevel: 0.2},
		},
		FlagRules: []FlagRule{
			// Exact matches come before the broader substring rules so
			// that "tooDirect" is not swallowed by the "direct" rule.
			{Kind: MatchExact, Pattern: "tooDirect", Mood: mood.MoodTesting, PositivityDelta: -8, TensionDelta: 0.15, Reason: "negative_flag"},
			{Kind: MatchExact, Pattern: "creepy", Mood: mood.MoodCold, PositivityDelta: -20, TensionDelta: 0.3, Reason: "negative_flag"},
			{Kind: MatchExact, Pattern: "tryhard", Mood: mood.MoodAnnoyed, PositivityDelta: -12, TensionDelta: 0.2, Reason: "negative_flag"},
			{Kind: MatchSubstring, Pattern: "direct", Mood: mood.MoodTesting, PositivityDelta: -5, TensionDelta: 0.1, Reason: "negative_flag"},
			{Kind: MatchSubstring, Pattern: "negative", Mood: mood.MoodAnnoyed, PositivityDelta: -10, TensionDelta: 0.15, Reason: "negative_flag"},
			{Kind: MatchRegex, Pattern: `(?i)low[-_ ]?impact`, Mood: mood.MoodBored, PositivityDelta: -6, TensionDelta: 0.05, Reason: "negative_flag"},
			{Kind: MatchSubstring, Pattern: "humor", Mood: mood.MoodWarm, PositivityDelta: 10, TensionDelta: -0.1, Reason: "positive_flag"},
			{Kind: MatchSubstring, Pattern: "confident", Mood: mood.MoodInterested, PositivityDelta: 8, TensionDelta: -0.05, Reason: "positive_flag"},
			{Kind: MatchSubstring, Pattern: "vulnerable", Mood: mood.MoodShy, PositivityDelta: 4, TensionDelta: 0.0, Reason: "positive_flag"},
			{Kind: MatchSubstring, Pattern: "curious", Mood: mood.MoodInterested, PositivityDelta: 6, TensionDelta: -0.05, Reason: "positive_flag"},
		},
		TraitRules: []TraitRule{
			{Trait: "confidence", Trend: TrendHigh, Mood: mood.MoodInterested, PositivityDelta: 8, TensionDelta: -0.05, Reason: "trait_trend"},
			{Trait: "confidence", Trend: TrendLow, Mood: mood.MoodTesting, PositivityDelta: -6, TensionDelta: 0.1, Reason: "trait_trend"},
			{Trait: "confidence", Trend: TrendIncreasing, Mood: mood.MoodWarm, PositivityDelta: 5, TensionDelta: -0.05, Reason: "trait_trend"},
			{Trait: "humor", Trend: TrendHigh, Mood: mood.MoodWarm, PositivityDelta: 8, TensionDelta: -0.1, Reason: "trait_trend"},
			{Trait: "humor", Trend: TrendDecreasing, Mood: mood.MoodBored, PositivityDelta: -5, TensionDelta: 0.05, Reason: "trait_trend"},
			{Trait: "empathy", Trend: TrendHigh, Mood: mood.MoodWarm, PositivityDelta: 6, TensionDelta: -0.1, Reason: "trait_trend"},
			{Trait: "empathy", Trend: TrendLow, Mood: mood.MoodCold, PositivityDelta: -8, TensionDelta: 0.1, Reason: "trait_trend"},
			{Trait: "energy", Trend: TrendDecreasing, Mood: mood.MoodBored, PositivityDelta: -4, TensionDelta: 0.05, Reason: "trait_trend"},
		},
	}
	t.compile()
	return t
}

// compile pre-builds the regex matchers so table lookup stays allocation
// free on the turn path.
func (t *MoodTables) compile() {
	for i := range t.FlagRules {
		if t.FlagRules[i].Kind == MatchRegex {
			t.FlagRules[i].re = regexp.MustCompile(t.FlagRules[i].Pattern)
		}
	}
}

// Compile prepares user-constructed tables for matching. DefaultMoodTables
// output is already compiled.
func (t *MoodTables) Compile() {
	t.compile()
}

// LookupScore finds the range containing score. Scores are clamped into
// [0,100] first so a noisy upstream value still resolves.
func (t *MoodTables) LookupScore(score int) ScoreRange {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	for i, r := range t.ScoreRanges {
		last := i == len(t.ScoreRanges)-1
		if score >= r.Min && (score < r.Max || (last && score <= r.Max)) {
			return r
		}
	}
	// Unreachable when ranges cover [0,100]; return the last row.
	return t.ScoreRanges[len(t.ScoreRanges)-1]
}

// MatchFlag scans the ordered flag rules against the turn's flags and
// returns the first rule that matches any flag. First-match-wins: rule
// order decides, then flag order within a rule.
func (t *MoodTables) MatchFlag(flags []string) (FlagRule, bool) {
	for _, rule := range t.FlagRules {
		for _, flag := range flags {
			if rule.matches(flag) {
				return rule, true
			}
		}
	}
	return FlagRule{}, false
}

func (r FlagRule) matches(flag string) bool {
	switch r.Kind {
	case MatchExact:
		return strings.EqualFold(flag, r.Pattern)
	case MatchSubstring:
		return strings.Contains(strings.ToLower(flag), strings.ToLower(r.Pattern))
	case MatchRegex:
		return r.re != nil && r.re.MatchString(flag)
	}
	return false
}

// ClassifyTrend derives the trend for one trait given its current and
// previous values. The absolute-level checks run last and overwrite the
// delta classification, so high/low take precedence.
func ClassifyTrend(current, previous int) (TraitTrend, bool) {
	var trend TraitTrend
	ok := false
	delta := current - previous
	if delta > 10 {
		trend, ok = TrendIncreasing, true
	} else if delta < -10 {
		trend, ok = TrendDecreasing, true
	}
	if current >= 80 {
		trend, ok = TrendHigh, true
	} else if current <= 30 {
		trend, ok = TrendLow, true
	}
	return trend, ok
}

// MatchTrait scans the ordered trait rules and returns the first rule
// whose (trait, trend) pair matches the observed values. Only one trait
// may affect the mood per turn.
func (t *MoodTables) MatchTrait(current, previous map[string]int) (TraitRule, bool) {
	if current == nil || previous == nil {
		return TraitRule{}, false
	}
	for _, rule := range t.TraitRules {
		cur, okCur := current[rule.Trait]
		prev, okPrev := previous[rule.Trait]
		if !okCur || !okPrev {
			continue
		}
		trend, ok := ClassifyTrend(cur, prev)
		if ok && trend == rule.Trend {
			return rule, true
		}
	}
	return TraitRule{}, false
}
