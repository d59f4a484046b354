package rules

import (
	"math"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/mood"
)

// ProgressPct derives mission progress from the message count. Without a
// configured max, every message is worth a flat 10%.
func ProgressPct(messageCount, maxMessages int) int {
	if maxMessages <= 0 {
		return mood.ClampPct(messageCount * 10)
	}
	pct := int(math.Round(float64(messageCount) / float64(maxMessages) * 100))
	return mood.ClampPct(pct)
}

// SuccessLikelihood estimates the chance of completing the objective.
// The average score is dampened early on and amplified near the end,
// then shifted by the threshold comparison.
func SuccessLikelihood(averageScore float64, progressPct int, diff mission.Difficulty) int {
	likelihood := averageScore
	if progressPct < 50 {
		likelihood *= 0.8
	} else if progressPct >= 80 {
		likelihood *= 1.2
	}

	if diff.HasThresholds {
		if averageScore >= float64(diff.SuccessThreshold) {
			likelihood += 10
		} else if averageScore < float64(diff.FailThreshold) {
			likelihood -= 20
		}
	}

	return mood.ClampPct(int(math.Round(likelihood)))
}

// StabilityScore measures how steady the conversation is: low score
// variance plus a stable mood reads as steady. Defaults to 80 before any
// scores exist.
func StabilityScore(recentScores []int, moodStable bool) int {
	if len(recentScores) == 0 {
		return 80
	}
	score := mood.ClampPct(100 - int(math.Round(2*stdDev(recentScores))))
	if moodStable {
		score += 10
	} else {
		score -= 10
	}
	return mood.ClampPct(score)
}

func stdDev(vs []int) float64 {
	if len(vs) < 2 {
		return 0
	}
	mean := averageInt(vs)
	var sum float64
	for _, v := range vs {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)))
}
