package rules

import (
	"testing"
	"time"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

func TestRewardPermissionsFor_NilObjective(t *testing.T) {
	state := mission.NewState()
	perms := RewardPermissionsFor(&state, nil)

	for _, rt := range RewardTypes {
		if perms[rt].Status != RewardNotApplicable {
			t.Errorf("%s = %s, want NOT_APPLICABLE with no objective", rt, perms[rt].Status)
		}
	}
}

func TestRewardPermissionsFor_FailsClosedWithoutGateState(t *testing.T) {
	objective := &mission.Objective{Kind: mission.ObjectiveGetPhoneNumber, Difficulty: mission.DifficultyEasy}

	// Nil state and state without an evaluated gate set must both forbid.
	for _, state := range []*mission.State{nil, {}} {
		perms := RewardPermissionsFor(state, objective)
		if perms[RewardPhoneNumber].Status != RewardForbidden {
			t.Errorf("phone number = %s, want FORBIDDEN before any gate evaluation", perms[RewardPhoneNumber].Status)
		}
	}
}

func TestRewardPermissionsFor_ForbiddenListsUnmetGates(t *testing.T) {
	req := GateRequirement{RequiredGates: []mission.GateKey{mission.GateMinMessages, mission.GateAvgScoreAbove}}
	state := mission.NewState()
	state.GateState = EvaluateGates(req, map[mission.GateKey]bool{mission.GateMinMessages: true}, time.Now())

	objective := &mission.Objective{Kind: mission.ObjectiveGetPhoneNumber, Difficulty: mission.DifficultyEasy}
	perms := RewardPermissionsFor(&state, objective)

	decision := perms[RewardPhoneNumber]
	if decision.Status != RewardForbidden {
		t.Fatalf("status = %s, want FORBIDDEN", decision.Status)
	}
	if len(decision.UnmetGates) != 1 || decision.UnmetGates[0] != mission.GateAvgScoreAbove {
		t.Errorf("UnmetGates = %v, want [avg_score_above]", decision.UnmetGates)
	}
}

func TestRewardPermissionsFor_AllowsWhenGatesMet(t *testing.T) {
	req := GateRequirement{RequiredGates: []mission.GateKey{mission.GateMinMessages}}
	state := mission.NewState()
	state.GateState = EvaluateGates(req, map[mission.GateKey]bool{mission.GateMinMessages: true}, time.Now())

	objective := &mission.Objective{Kind: mission.ObjectiveSecureDate, Difficulty: mission.DifficultyMedium}
	perms := RewardPermissionsFor(&state, objective)

	if perms[RewardDateAgreement].Status != RewardAllowed {
		t.Errorf("date agreement = %s, want ALLOWED", perms[RewardDateAgreement].Status)
	}
	// Only the objective's own reward may be released.
	if perms[RewardPhoneNumber].Status != RewardNotApplicable {
		t.Errorf("phone number = %s, want NOT_APPLICABLE for a date mission", perms[RewardPhoneNumber].Status)
	}
}

func TestRewardPermissionsFor_EveryObjectiveHasPrimaryReward(t *testing.T) {
	for _, kind := range mission.ObjectiveKinds {
		if _, ok := primaryReward[kind]; !ok {
			t.Errorf("objective %s has no primary reward", kind)
		}
	}
}
