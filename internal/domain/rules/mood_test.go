package rules

import (
	"testing"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func noThresholds() mission.Difficulty {
	return mission.Difficulty{Level: mission.DifficultyMedium}
}

func TestLookupScore_Ranges(t *testing.T) {
	tables := DefaultMoodTables()

	tests := []struct {
		score int
		want  mood.Mood
	}{
		{0, mood.MoodCold},
		{29, mood.MoodCold},
		{30, mood.MoodBored},
		{49, mood.MoodBored},
		{50, mood.MoodNeutral},
		{69, mood.MoodNeutral},
		{70, mood.MoodInterested},
		{84, mood.MoodInterested},
		{85, mood.MoodExcited},
		{100, mood.MoodExcited},
		{-5, mood.MoodCold},     // clamped up
		{150, mood.MoodExcited}, // clamped down
	}

	for _, tt := range tests {
		got := tables.LookupScore(tt.score)
		if got.Mood != tt.want {
			t.Errorf("LookupScore(%d) = %s, want %s", tt.score, got.Mood, tt.want)
		}
	}
}

func TestUpdateMood_LowScoreTurnsCold(t *testing.T) {
	state := mood.NewState()
	next := UpdateMood(state, MoodSignals{Score: 25, Now: testNow}, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodCold {
		t.Errorf("mood = %s, want cold", next.CurrentMood)
	}
	if next.PositivityPct >= 50 {
		t.Errorf("positivity = %d, want < 50", next.PositivityPct)
	}
	if next.TensionLevel <= 0.5 {
		t.Errorf("tension = %.2f, want > 0.5", next.TensionLevel)
	}
	if next.IsStable {
		t.Error("mood swing from neutral to cold should be unstable")
	}
	if next.LastChangeReason != "score_range" {
		t.Errorf("reason = %q, want score_range", next.LastChangeReason)
	}
}

func TestUpdateMood_HighScoreTurnsExcited(t *testing.T) {
	state := mood.NewState()
	next := UpdateMood(state, MoodSignals{Score: 90, Now: testNow}, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodExcited {
		t.Errorf("mood = %s, want excited", next.CurrentMood)
	}
	if next.PositivityPct <= 70 {
		t.Errorf("positivity = %d, want > 70", next.PositivityPct)
	}
	if next.TensionLevel >= 0.4 {
		t.Errorf("tension = %.2f, want < 0.4", next.TensionLevel)
	}
}

func TestUpdateMood_TooDirectFlag(t *testing.T) {
	state := mood.NewState()
	next := UpdateMood(state, MoodSignals{Score: 55, Flags: []string{"tooDirect"}, Now: testNow}, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodTesting {
		t.Errorf("mood = %s, want testing", next.CurrentMood)
	}
	if next.LastChangeReason != "negative_flag" {
		t.Errorf("reason = %q, want negative_flag", next.LastChangeReason)
	}
}

func TestUpdateMood_FlagRuleOrderMatters(t *testing.T) {
	// "tooDirect" must hit the exact rule (-8 positivity), not the
	// broader "direct" substring rule (-5). Both land on testing, so the
	// positivity difference is what proves the ordering.
	tables := DefaultMoodTables()
	state := mood.NewState()

	exact := UpdateMood(state, MoodSignals{Score: 55, Flags: []string{"tooDirect"}, Now: testNow}, noThresholds(), tables)
	substr := UpdateMood(state, MoodSignals{Score: 55, Flags: []string{"veryDirect"}, Now: testNow}, noThresholds(), tables)

	if exact.CurrentMood != mood.MoodTesting || substr.CurrentMood != mood.MoodTesting {
		t.Fatalf("moods = %s/%s, want testing/testing", exact.CurrentMood, substr.CurrentMood)
	}
	if exact.PositivityPct >= substr.PositivityPct {
		t.Errorf("exact rule positivity %d should be below substring rule positivity %d",
			exact.PositivityPct, substr.PositivityPct)
	}
}

func TestUpdateMood_FirstMatchingFlagWins(t *testing.T) {
	tables := DefaultMoodTables()
	state := mood.NewState()

	// "creepy" (rule 2) outranks "humor" (later rule) regardless of the
	// flag order in the slice.
	next := UpdateMood(state, MoodSignals{Score: 55, Flags: []string{"humor", "creepy"}, Now: testNow}, noThresholds(), tables)
	if next.CurrentMood != mood.MoodCold {
		t.Errorf("mood = %s, want cold from the creepy rule", next.CurrentMood)
	}
}

func TestUpdateMood_SkipsInsignificantScoreChange(t *testing.T) {
	state := mood.State{
		CurrentMood:   mood.MoodNeutral,
		PositivityPct: 55,
		TensionLevel:  0.4,
		IsStable:      true,
	}
	next := UpdateMood(state, MoodSignals{Score: 55, Now: testNow}, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodNeutral {
		t.Errorf("mood = %s, want neutral unchanged", next.CurrentMood)
	}
	if next.PositivityPct != 55 {
		t.Errorf("positivity = %d, want 55 unchanged", next.PositivityPct)
	}
	if !next.IsStable {
		t.Error("repeated identical score should stay stable")
	}
	if !next.LastChangedAt.IsZero() {
		t.Error("LastChangedAt should not move when nothing applied")
	}
}

func TestUpdateMood_Deterministic(t *testing.T) {
	state := mood.NewState()
	sig := MoodSignals{
		Score:      42,
		Flags:      []string{"negativeVibes"},
		Traits:     map[string]int{"confidence": 85},
		PrevTraits: map[string]int{"confidence": 80},
		Now:        testNow,
	}
	diff := mission.Difficulty{Level: mission.DifficultyHard, FailThreshold: 40, SuccessThreshold: 75, HasThresholds: true}
	tables := DefaultMoodTables()

	a := UpdateMood(state, sig, diff, tables)
	b := UpdateMood(state, sig, diff, tables)
	if a != b {
		t.Errorf("same inputs produced different states:\n%+v\n%+v", a, b)
	}
}

func TestUpdateMood_TensionClimbsBelowFailThreshold(t *testing.T) {
	diff := mission.Difficulty{Level: mission.DifficultyHard, FailThreshold: 40, SuccessThreshold: 75, HasThresholds: true}
	state := mood.NewState()

	next := UpdateMood(state, MoodSignals{Score: 20, Now: testNow}, diff, DefaultMoodTables())
	// Score range sets 0.8, then the failing score adds 0.2 capped at 1.0.
	if next.TensionLevel != 1.0 {
		t.Errorf("tension = %.2f, want 1.0", next.TensionLevel)
	}
}

func TestUpdateMood_TensionEasesAboveSuccessThreshold(t *testing.T) {
	diff := mission.Difficulty{Level: mission.DifficultyHard, FailThreshold: 40, SuccessThreshold: 75, HasThresholds: true}
	state := mood.NewState()

	next := UpdateMood(state, MoodSignals{Score: 90, Now: testNow}, diff, DefaultMoodTables())
	// Score range sets 0.2, the succeeding score subtracts 0.15, floored
	// at 0.1.
	if next.TensionLevel != 0.1 {
		t.Errorf("tension = %.2f, want 0.1", next.TensionLevel)
	}
}

func TestUpdateMood_ClampsAfterHarshFlag(t *testing.T) {
	state := mood.NewState()
	next := UpdateMood(state, MoodSignals{Score: 10, Flags: []string{"creepy"}, Now: testNow}, noThresholds(), DefaultMoodTables())

	if next.PositivityPct < 0 || next.PositivityPct > 100 {
		t.Errorf("positivity %d out of range", next.PositivityPct)
	}
	if next.TensionLevel < 0 || next.TensionLevel > 1.0 {
		t.Errorf("tension %.2f out of range", next.TensionLevel)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev int
		want      TraitTrend
		ok        bool
	}{
		{"increasing", 60, 45, TrendIncreasing, true},
		{"decreasing", 40, 55, TrendDecreasing, true},
		{"high overrides increasing", 85, 70, TrendHigh, true},
		{"high without delta", 82, 81, TrendHigh, true},
		{"low overrides decreasing", 20, 50, TrendLow, true},
		{"flat midrange", 50, 48, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, ok := ClassifyTrend(tt.cur, tt.prev)
			if ok != tt.ok || trend != tt.want {
				t.Errorf("ClassifyTrend(%d, %d) = (%q, %v), want (%q, %v)",
					tt.cur, tt.prev, trend, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUpdateMood_TraitTrendApplies(t *testing.T) {
	state := mood.State{CurrentMood: mood.MoodNeutral, PositivityPct: 55, TensionLevel: 0.4, IsStable: true}
	sig := MoodSignals{
		Score:      55, // range step is a no-op here
		Traits:     map[string]int{"confidence": 85},
		PrevTraits: map[string]int{"confidence": 80},
		Now:        testNow,
	}
	next := UpdateMood(state, sig, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodInterested {
		t.Errorf("mood = %s, want interested from high confidence", next.CurrentMood)
	}
	if next.LastChangeReason != "trait_trend" {
		t.Errorf("reason = %q, want trait_trend", next.LastChangeReason)
	}
}

func TestUpdateMood_TraitStepNeedsPreviousTurn(t *testing.T) {
	state := mood.NewState()
	sig := MoodSignals{Score: 55, Traits: map[string]int{"confidence": 85}, Now: testNow}
	next := UpdateMood(state, sig, noThresholds(), DefaultMoodTables())

	if next.CurrentMood != mood.MoodNeutral {
		t.Errorf("mood = %s, want neutral; trait step must skip on first turn", next.CurrentMood)
	}
}
