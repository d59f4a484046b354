package mission

import "testing"

func TestNewState_Defaults(t *testing.T) {
	s := NewState()
	if s.StabilityScore != 80 {
		t.Errorf("stability score = %d, want 80", s.StabilityScore)
	}
	if s.PersonaStability != 100 {
		t.Errorf("persona stability = %d, want 100", s.PersonaStability)
	}
	if s.MessageCount != 0 || s.GateState != nil {
		t.Error("fresh state must have no turns and no gate evaluation")
	}
}

func TestPushRecent_TrimsToWindow(t *testing.T) {
	var s State
	for i := 1; i <= RecentWindow+2; i++ {
		s.PushRecent(i*10, []string{"f"}, map[string]int{"confidence": i})
	}

	if len(s.RecentScores) != RecentWindow {
		t.Fatalf("kept %d scores, want %d", len(s.RecentScores), RecentWindow)
	}
	// Oldest entries fall off first.
	if s.RecentScores[0] != 30 || s.RecentScores[RecentWindow-1] != 50 {
		t.Errorf("recent scores = %v, want [30 40 50]", s.RecentScores)
	}
	if len(s.RecentFlags) != RecentWindow || len(s.RecentTraits) != RecentWindow {
		t.Error("flags and traits must trim alongside scores")
	}
}

func TestPreviousTraits(t *testing.T) {
	var s State
	if s.PreviousTraits() != nil {
		t.Error("no history should yield nil")
	}

	s.PushRecent(50, nil, map[string]int{"confidence": 40})
	if s.PreviousTraits() != nil {
		t.Error("a single turn has no previous traits")
	}

	s.PushRecent(60, nil, map[string]int{"confidence": 55})
	prev := s.PreviousTraits()
	if prev == nil || prev["confidence"] != 40 {
		t.Errorf("previous traits = %v, want the first turn's map", prev)
	}
}
