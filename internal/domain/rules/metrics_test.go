package rules

import (
	"testing"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
)

func TestProgressPct(t *testing.T) {
	tests := []struct {
		name      string
		count, mx int
		want      int
	}{
		{"no limit flat rate", 3, 0, 30},
		{"no limit clamps", 15, 0, 100},
		{"quarter of limit", 5, 20, 25},
		{"at limit", 20, 20, 100},
		{"over limit clamps", 25, 20, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPct(tt.count, tt.mx); got != tt.want {
				t.Errorf("ProgressPct(%d, %d) = %d, want %d", tt.count, tt.mx, got, tt.want)
			}
		})
	}
}

func TestSuccessLikelihood(t *testing.T) {
	noThresh := mission.Difficulty{Level: mission.DifficultyMedium}
	thresh := mission.Difficulty{Level: mission.DifficultyHard, FailThreshold: 40, SuccessThreshold: 75, HasThresholds: true}

	tests := []struct {
		name     string
		avg      float64
		progress int
		diff     mission.Difficulty
		want     int
	}{
		{"dampened early", 60, 30, noThresh, 48},
		{"neutral midgame", 60, 60, noThresh, 60},
		{"amplified endgame", 60, 80, noThresh, 72},
		{"above success threshold", 80, 60, thresh, 90},
		{"below fail threshold", 30, 60, thresh, 10},
		{"clamped high", 95, 90, thresh, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuccessLikelihood(tt.avg, tt.progress, tt.diff); got != tt.want {
				t.Errorf("SuccessLikelihood(%.0f, %d) = %d, want %d", tt.avg, tt.progress, got, tt.want)
			}
		})
	}
}

func TestStabilityScore(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		stable bool
		want   int
	}{
		{"no history", nil, true, 80},
		{"steady scores stable mood", []int{50, 50, 50}, true, 100},
		{"volatile scores unstable mood", []int{20, 80}, false, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StabilityScore(tt.scores, tt.stable); got != tt.want {
				t.Errorf("StabilityScore(%v, %v) = %d, want %d", tt.scores, tt.stable, got, tt.want)
			}
		})
	}
}
