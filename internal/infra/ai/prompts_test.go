package ai

import (
	"strings"
	"testing"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
)

func TestBuildPersonaPrompt_ForbiddenRewardsAreGuarded(t *testing.T) {
	m := mission.Mission{
		Style:    mission.StyleFlirty,
		Dynamics: mission.Dynamics{Flirtiveness: 80},
	}
	prompt := BuildPersonaPrompt(PromptInput{
		Mission: &m,
		State:   mission.NewState(),
		Rewards: rules.RewardPermissions{
			rules.RewardPhoneNumber: {Status: rules.RewardForbidden, Reason: "required gates not met"},
		},
	})

	if !strings.Contains(prompt, "Do NOT offer or agree to giving your phone number") {
		t.Errorf("prompt missing the reward guard:\n%s", prompt)
	}
	if strings.Contains(prompt, "AI") && !strings.Contains(prompt, "Never mention that you are an AI") {
		t.Error("prompt should only reference AI in the in-character rule")
	}
}

func TestBuildPersonaPrompt_IncludesHintsAndConditions(t *testing.T) {
	prompt := BuildPersonaPrompt(PromptInput{
		State:              mission.NewState(),
		Hints:              []string{"Keep suggestions low-risk for the next 3 turns."},
		AdvisoryConditions: []string{"She expects you to carry the conversation."},
	})

	if !strings.Contains(prompt, "low-risk for the next 3 turns") {
		t.Error("prompt missing the modifier hint")
	}
	if !strings.Contains(prompt, "carry the conversation") {
		t.Error("prompt missing the advisory condition")
	}
}

func TestBuildPersonaPrompt_SurfacesDrift(t *testing.T) {
	state := mission.NewState()
	state.LastDriftReason = "flirty_style_cold_mood"

	prompt := BuildPersonaPrompt(PromptInput{State: state})
	if !strings.Contains(prompt, "flirty style cold mood") {
		t.Error("prompt should surface the drift reason with underscores replaced")
	}
}
