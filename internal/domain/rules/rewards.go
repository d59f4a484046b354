package rules

import (
	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

// RewardType identifies what a mission can release on success.
type RewardType string

const (
	RewardPhoneNumber   RewardType = "PHONE_NUMBER"
	RewardInstagram     RewardType = "INSTAGRAM"
	RewardDateAgreement RewardType = "DATE_AGREEMENT"
	RewardPass          RewardType = "PASS"
	RewardSuccess       RewardType = "SUCCESS"
)

// RewardTypes lists every reward type in decision-table order.
var RewardTypes = []RewardType{
	RewardPhoneNumber,
	RewardInstagram,
	RewardDateAgreement,
	RewardPass,
	RewardSuccess,
}

// RewardStatus is the release decision for one reward type.
type RewardStatus string

const (
	RewardAllowed       RewardStatus = "ALLOWED"
	RewardForbidden     RewardStatus = "FORBIDDEN"
	RewardNotApplicable RewardStatus = "NOT_APPLICABLE"
)

// RewardDecision is one reward type's verdict with its reasoning.
type RewardDecision struct {
	Status     RewardStatus      `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	UnmetGates []mission.GateKey `json:"unmet_gates,omitempty"`
}

// RewardPermissions maps every reward type to its decision. A mission
// has exactly one releasable reward kind; everything else stays
// NOT_APPLICABLE.
type RewardPermissions map[RewardType]RewardDecision

// primaryReward maps an objective kind to its single releasable reward.
var primaryReward = map[mission.ObjectiveKind]RewardType{
	mission.ObjectiveGetPhoneNumber: RewardPhoneNumber,
	mission.ObjectiveGetInstagram:   RewardInstagram,
	mission.ObjectiveSecureDate:     RewardDateAgreement,
	mission.ObjectiveHoldAttention:  RewardPass,
	mission.ObjectiveRecoverSlip:    RewardPass,
	mission.ObjectiveBuildRapport:   RewardSuccess,
	mission.ObjectiveCharm:          RewardSuccess,
}

// RewardPermissionsFor decides, per reward type, whether release is
// allowed. The decision fails closed: with no gate state every reward is
// FORBIDDEN, never ALLOWED.
func RewardPermissionsFor(state *mission.State, objective *mission.Objective) RewardPermissions {
	perms := make(RewardPermissions, len(RewardTypes))

	if objective == nil {
		for _, rt := range RewardTypes {
			perms[rt] = RewardDecision{Status: RewardNotApplicable, Reason: "no active objective"}
		}
		return perms
	}

	primary := primaryReward[objective.Kind]
	for _, rt := range RewardTypes {
		if rt != primary {
			perms[rt] = RewardDecision{Status: RewardNotApplicable}
		}
	}

	if state == nil || state.GateState == nil {
		perms[primary] = RewardDecision{
			Status: RewardForbidden,
			Reason: "gate state not initialized",
		}
		return perms
	}

	gs := state.GateState
	if !gs.AllRequiredGatesMet {
		perms[primary] = RewardDecision{
			Status:     RewardForbidden,
			Reason:     "required gates not met",
			UnmetGates: append([]mission.GateKey{}, gs.UnmetGates...),
		}
		return perms
	}

	perms[primary] = RewardDecision{Status: RewardAllowed}
	return perms
}
