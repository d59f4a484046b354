package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

// GateRequirement is one row of the gate table: the gates that must pass
// before the objective's reward is released, plus advisory free-text
// conditions that are injected into the persona prompt but never
// machine-evaluated.
type GateRequirement struct {
	RequiredGates        []mission.GateKey
	AdditionalConditions []string
}

type gateTableKey struct {
	Kind  mission.ObjectiveKind
	Level mission.DifficultyLevel
}

// GateTable resolves the required-gate set for every objective kind and
// difficulty level. The table must be exhaustive over the cross-product;
// a missing pair is a configuration error surfaced at startup.
type GateTable struct {
	rows map[gateTableKey]GateRequirement
}

// NewGateTable builds and validates the standard gate table. It returns
// an error instead of a table when any (kind, level) pair is missing, so
// callers fail loudly at startup rather than silently at runtime.
func NewGateTable() (*GateTable, error) {
	t := &GateTable{rows: map[gateTableKey]GateRequirement{}}

	base := map[mission.ObjectiveKind][]mission.GateKey{
		mission.ObjectiveGetPhoneNumber: {mission.GateMinMessages, mission.GateAvgScoreAbove},
		mission.ObjectiveGetInstagram:   {mission.GateMinMessages, mission.GateMoodPositive},
		mission.ObjectiveSecureDate:     {mission.GateMinMessages, mission.GateAvgScoreAbove, mission.GateMoodPositive},
		mission.ObjectiveHoldAttention:  {mission.GateMinMessages},
		mission.ObjectiveRecoverSlip:    {mission.GateNoRecentNegative},
		mission.ObjectiveBuildRapport:   {mission.GateAvgScoreAbove, mission.GateTensionUnder},
		mission.ObjectiveCharm:          {mission.GateAvgScoreAbove, mission.GateMoodPositive, mission.GateTensionUnder},
	}

	conditions := map[mission.DifficultyLevel][]string{
		mission.DifficultyEasy:   nil,
		mission.DifficultyMedium: {"She expects you to carry the conversation."},
		mission.DifficultyHard:   {"She will test you at least once before opening up.", "Do not reward one-word messages."},
		mission.DifficultyExpert: {"She starts disinterested and only warms to sustained quality.", "Any desperation resets her interest."},
	}

	for _, kind := range mission.ObjectiveKinds {
		for _, level := range mission.DifficultyLevels {
			gates := append([]mission.GateKey{}, base[kind]...)
			switch level {
			case mission.DifficultyHard:
				gates = appendGateOnce(gates, mission.GateNoRecentNegative)
			case mission.DifficultyExpert:
				gates = appendGateOnce(gates, mission.GateNoRecentNegative)
				gates = appendGateOnce(gates, mission.GateScoreStreak)
				gates = appendGateOnce(gates, mission.GatePersonaStable)
			}
			t.rows[gateTableKey{kind, level}] = GateRequirement{
				RequiredGates:        gates,
				AdditionalConditions: conditions[level],
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the table covers the full objective x difficulty
// cross-product with non-empty gate sets.
func (t *GateTable) Validate() error {
	for _, kind := range mission.ObjectiveKinds {
		for _, level := range mission.DifficultyLevels {
			req, ok := t.rows[gateTableKey{kind, level}]
			if !ok {
				return fmt.Errorf("gate table missing row for objective %s at difficulty %s", kind, level)
			}
			if len(req.RequiredGates) == 0 {
				return fmt.Errorf("gate table row for objective %s at difficulty %s has no required gates", kind, level)
			}
		}
	}
	return nil
}

// Resolve returns the requirement row for an objective. The bool is
// false only for combinations outside the enumerated sets.
func (t *GateTable) Resolve(kind mission.ObjectiveKind, level mission.DifficultyLevel) (GateRequirement, bool) {
	req, ok := t.rows[gateTableKey{kind, level}]
	return req, ok
}

func appendGateOnce(gates []mission.GateKey, key mission.GateKey) []mission.GateKey {
	for _, g := range gates {
		if g == key {
			return gates
		}
	}
	return append(gates, key)
}

// EvaluateGates folds the gate-check collaborator's raw verdicts into a
// GateState for the required set. Gates absent from the verdict map count
// as failed. MetGates and UnmetGates always partition RequiredGates.
func EvaluateGates(req GateRequirement, verdicts map[mission.GateKey]bool, now time.Time) *mission.GateState {
	gs := &mission.GateState{
		Gates:         make(map[mission.GateKey]mission.GateResult, len(req.RequiredGates)),
		RequiredGates: append([]mission.GateKey{}, req.RequiredGates...),
	}

	for _, key := range req.RequiredGates {
		passed := verdicts[key]
		result := mission.GateResult{Passed: passed, EvaluatedAt: now}
		if !passed {
			result.ReasonCode = "not_met"
		}
		gs.Gates[key] = result
		if passed {
			gs.MetGates = append(gs.MetGates, key)
		} else {
			gs.UnmetGates = append(gs.UnmetGates, key)
		}
	}

	sortGates(gs.MetGates)
	sortGates(gs.UnmetGates)
	gs.AllRequiredGatesMet = len(gs.UnmetGates) == 0
	return gs
}

func sortGates(keys []mission.GateKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
