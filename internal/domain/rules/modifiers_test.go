package rules

import (
	"testing"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

func TestUpdateModifiers_TensionSpikeCreatesLowerRisk(t *testing.T) {
	events := []ModifierEvent{{Type: EventTensionSpike, Severity: 0.8}}
	mods := UpdateModifiers(events, nil, DefaultModifierConfig(), testNow)

	if len(mods) != 1 {
		t.Fatalf("got %d modifiers, want 1", len(mods))
	}
	m := mods[0]
	if m.Key != ModifierLowerRisk {
		t.Errorf("key = %q, want %q", m.Key, ModifierLowerRisk)
	}
	if m.Effect != mission.EffectReduceRisk {
		t.Errorf("effect = %q, want reduceRisk", m.Effect)
	}
	if m.RemainingTurns != 3 {
		t.Errorf("remaining turns = %d, want 3", m.RemainingTurns)
	}
}

func TestUpdateModifiers_SeverityAtCutoffDoesNotFire(t *testing.T) {
	events := []ModifierEvent{{Type: EventTensionSpike, Severity: 0.6}}
	mods := UpdateModifiers(events, nil, DefaultModifierConfig(), testNow)
	if len(mods) != 0 {
		t.Errorf("got %d modifiers, want 0; cutoff is exclusive", len(mods))
	}
}

func TestUpdateModifiers_DecayAndExpiry(t *testing.T) {
	existing := []mission.ActiveModifier{
		{Key: ModifierLowerRisk, Effect: mission.EffectReduceRisk, RemainingTurns: 3},
		{Key: ModifierLowerWarmth, Effect: mission.EffectLowerWarmth, RemainingTurns: 1},
	}

	mods := UpdateModifiers(nil, existing, DefaultModifierConfig(), testNow)
	if len(mods) != 1 {
		t.Fatalf("got %d modifiers, want 1; the single-turn modifier must expire", len(mods))
	}
	if mods[0].Key != ModifierLowerRisk || mods[0].RemainingTurns != 2 {
		t.Errorf("survivor = %+v, want lowerRisk with 2 turns left", mods[0])
	}
}

func TestUpdateModifiers_DecayRunsBeforeAppend(t *testing.T) {
	// An expiring modifier can be re-created by a fresh event in the same
	// turn; it comes back at full duration, not stacked.
	existing := []mission.ActiveModifier{
		{Key: ModifierLowerRisk, Effect: mission.EffectReduceRisk, RemainingTurns: 1},
	}
	events := []ModifierEvent{{Type: EventTensionSpike, Severity: 0.9}}

	mods := UpdateModifiers(events, existing, DefaultModifierConfig(), testNow)
	if len(mods) != 1 {
		t.Fatalf("got %d modifiers, want 1", len(mods))
	}
	if mods[0].RemainingTurns != 3 {
		t.Errorf("remaining turns = %d, want a fresh 3", mods[0].RemainingTurns)
	}
}

func TestUpdateModifiers_DedupesByKey(t *testing.T) {
	existing := []mission.ActiveModifier{
		{Key: ModifierLowerRisk, Effect: mission.EffectReduceRisk, RemainingTurns: 3},
	}
	events := []ModifierEvent{{Type: EventTensionSpike, Severity: 0.9}}

	mods := UpdateModifiers(events, existing, DefaultModifierConfig(), testNow)
	if len(mods) != 1 {
		t.Fatalf("got %d modifiers, want 1; same key must not duplicate", len(mods))
	}
	if mods[0].RemainingTurns != 2 {
		t.Errorf("remaining turns = %d, want the decayed 2, not a reset", mods[0].RemainingTurns)
	}
}

func TestUpdateModifiers_NegativeFlagEventCreatesNoModifier(t *testing.T) {
	events := []ModifierEvent{{Type: EventFlagNegative, Severity: 1.0}}
	mods := UpdateModifiers(events, nil, DefaultModifierConfig(), testNow)
	if len(mods) != 0 {
		t.Errorf("got %d modifiers, want 0; flag bursts only feed stability", len(mods))
	}
}

func TestApplyModifiers_StackedRiskModifiersBothApply(t *testing.T) {
	mods := []mission.ActiveModifier{
		{Key: ModifierLowerRisk, Effect: mission.EffectReduceRisk, RemainingTurns: 3},
		{Key: ModifierPlaySafer, Effect: mission.EffectReduceRisk, RemainingTurns: 2},
	}

	adj := ApplyModifiers(mods, 50, 50, DefaultModifierConfig())
	if adj.RiskIndex != 10 {
		t.Errorf("risk index = %d, want 10; both deltas apply", adj.RiskIndex)
	}
	if adj.Warmth != 50 {
		t.Errorf("warmth = %d, want untouched 50", adj.Warmth)
	}
	if len(adj.Hints) != 2 {
		t.Errorf("hints = %v, want one per modifier", adj.Hints)
	}
}

func TestApplyModifiers_FloorsAtZero(t *testing.T) {
	mods := []mission.ActiveModifier{
		{Key: ModifierLowerWarmth, Effect: mission.EffectLowerWarmth, RemainingTurns: 2},
	}

	adj := ApplyModifiers(mods, 50, 5, DefaultModifierConfig())
	if adj.Warmth != 0 {
		t.Errorf("warmth = %d, want floored at 0", adj.Warmth)
	}
}

func TestApplyModifiers_IsReadOnly(t *testing.T) {
	mods := []mission.ActiveModifier{
		{Key: ModifierLowerRisk, Effect: mission.EffectReduceRisk, RemainingTurns: 3},
	}

	a := ApplyModifiers(mods, 50, 50, DefaultModifierConfig())
	b := ApplyModifiers(mods, 50, 50, DefaultModifierConfig())
	if a.RiskIndex != b.RiskIndex || mods[0].RemainingTurns != 3 {
		t.Error("ApplyModifiers must not mutate the modifier list or drift between calls")
	}
}
