// Package mood defines the persona's emotional state entity.
// This package is PURE and must NOT import any infrastructure packages.
package mood

import "time"

// Mood represents the persona's current emotional register.
type Mood string

const (
	MoodWarm       Mood = "warm"
	MoodNeutral    Mood = "neutral"
	MoodCold       Mood = "cold"
	MoodExcited    Mood = "excited"
	MoodAnnoyed    Mood = "annoyed"
	MoodShy        Mood = "shy"
	MoodTesting    Mood = "testing"
	MoodInterested Mood = "interested"
	MoodBored      Mood = "bored"
)

// Negative reports whether the mood reads as hostile or disengaged.
func (m Mood) Negative() bool {
	switch m {
	case MoodCold, MoodAnnoyed, MoodBored:
		return true
	}
	return false
}

// State is the persona's emotional state, superseded once per turn.
// PositivityPct stays in [0,100] and TensionLevel in [0.0,1.0] after
// every mutation.
type State struct {
	CurrentMood      Mood      `json:"current_mood"`
	PositivityPct    int       `json:"positivity_pct"`
	TensionLevel     float64   `json:"tension_level"`
	IsStable         bool      `json:"is_stable"`
	LastChangeReason string    `json:"last_change_reason,omitempty"`
	LastChangedAt    time.Time `json:"last_changed_at,omitempty"`
}

// NewState returns the neutral default state used at mission start.
func NewState() State {
	return State{
		CurrentMood:   MoodNeutral,
		PositivityPct: 50,
		TensionLevel:  0.3,
		IsStable:      true,
	}
}

// Clamp forces the numeric fields back into their ranges.
func (s *State) Clamp() {
	s.PositivityPct = ClampPct(s.PositivityPct)
	s.TensionLevel = ClampTension(s.TensionLevel)
}

// ClampPct bounds a percentage value to [0,100].
func ClampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClampTension bounds a tension value to [0.0,1.0].
func ClampTension(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
