// Package mission defines the core domain entities for practice missions.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package mission

// ObjectiveKind identifies what the user is trying to achieve in a mission.
type ObjectiveKind string

const (
	ObjectiveGetPhoneNumber ObjectiveKind = "GET_PHONE_NUMBER"
	ObjectiveGetInstagram   ObjectiveKind = "GET_INSTAGRAM"
	ObjectiveSecureDate     ObjectiveKind = "SECURE_DATE"
	ObjectiveHoldAttention  ObjectiveKind = "HOLD_ATTENTION"
	ObjectiveRecoverSlip    ObjectiveKind = "RECOVER_SLIP"
	ObjectiveBuildRapport   ObjectiveKind = "BUILD_RAPPORT"
	ObjectiveCharm          ObjectiveKind = "CHARM"
)

// ObjectiveKinds lists every kind, in table order.
var ObjectiveKinds = []ObjectiveKind{
	ObjectiveGetPhoneNumber,
	ObjectiveGetInstagram,
	ObjectiveSecureDate,
	ObjectiveHoldAttention,
	ObjectiveRecoverSlip,
	ObjectiveBuildRapport,
	ObjectiveCharm,
}

// DifficultyLevel scales how demanding the persona is.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
	DifficultyExpert DifficultyLevel = "EXPERT"
)

// DifficultyLevels lists every level, in table order.
var DifficultyLevels = []DifficultyLevel{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
	DifficultyExpert,
}

// Objective is the active goal of a mission.
type Objective struct {
	Kind       ObjectiveKind   `json:"kind"`
	Difficulty DifficultyLevel `json:"difficulty"`
}

// Difficulty holds the score thresholds for a mission. HasThresholds
// is false when no thresholds were configured for the mission.
type Difficulty struct {
	Level            DifficultyLevel `json:"level"`
	FailThreshold    int             `json:"fail_threshold"`
	SuccessThreshold int             `json:"success_threshold"`
	HasThresholds    bool            `json:"has_thresholds"`
}

// PersonaStyle is the configured baseline tone of the persona.
type PersonaStyle string

const (
	StyleFlirty   PersonaStyle = "flirty"
	StyleWarm     PersonaStyle = "warm"
	StyleReserved PersonaStyle = "reserved"
	StylePlayful  PersonaStyle = "playful"
	StyleGuarded  PersonaStyle = "guarded"
)

// Dynamics holds the configured behavioral dials of the persona (0-100).
type Dynamics struct {
	Flirtiveness  int `json:"flirtiveness"`
	Vulnerability int `json:"vulnerability"`
	Assertiveness int `json:"assertiveness"`
}

// Mission is a scripted practice scenario: objective, difficulty and
// persona configuration.
type Mission struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Objective   *Objective   `json:"objective,omitempty"`
	Difficulty  Difficulty   `json:"difficulty"`
	Style       PersonaStyle `json:"style"`
	Dynamics    Dynamics     `json:"dynamics"`
	MaxMessages int          `json:"max_messages"` // 0 = no limit configured
}

// TurnSignals carries one turn's upstream inputs: the opaque scoring
// collaborator's output plus the gate-check collaborator's verdicts.
type TurnSignals struct {
	Score       int             `json:"score"` // 0-100
	Flags       []string        `json:"flags"`
	Traits      map[string]int  `json:"traits,omitempty"` // trait -> 0-100
	GateResults map[GateKey]bool `json:"gate_results,omitempty"`
}
