package ai

import (
	"fmt"
	"strings"

	"github.com/sofos1231/socialos-server/internal/domain/mission"
	"github.com/sofos1231/socialos-server/internal/domain/rules"
)

const personaSystemPrompt = `You are roleplaying a person in a social conversation practice session.
Stay fully in character at all times. Never mention that you are an AI,
a simulation, or that the player is practicing.

Your character:
%s

Current inner state:
%s

Behavior rules:
- React naturally to the tone of the player's last message.
- Your warmth, openness and patience follow your inner state above.
- If your mood is cold, annoyed or bored, be shorter and more distant.
- If your mood is warm, excited or interested, be engaged and playful.
%s
Reply with a single conversational message, no narration or labels.`

// PromptInput is everything the prompt builder reads. All fields are
// snapshots; the builder never mutates engine state.
type PromptInput struct {
	Mission            *mission.Mission
	State              mission.State
	Hints              []string
	AdvisoryConditions []string
	Rewards            rules.RewardPermissions
}

// BuildPersonaPrompt renders the system prompt for the persona reply.
func BuildPersonaPrompt(in PromptInput) string {
	var character strings.Builder
	if in.Mission != nil {
		fmt.Fprintf(&character, "- Conversational style: %s\n", in.Mission.Style)
		fmt.Fprintf(&character, "- Flirtiveness %d/100, vulnerability %d/100, assertiveness %d/100\n",
			in.Mission.Dynamics.Flirtiveness, in.Mission.Dynamics.Vulnerability, in.Mission.Dynamics.Assertiveness)
	} else {
		character.WriteString("- A friendly stranger with no particular agenda\n")
	}

	var state strings.Builder
	fmt.Fprintf(&state, "- Mood: %s (positivity %d/100, tension %.1f)\n",
		in.State.Mood.CurrentMood, in.State.Mood.PositivityPct, in.State.Mood.TensionLevel)
	fmt.Fprintf(&state, "- Persona stability: %d/100\n", in.State.PersonaStability)
	if in.State.LastDriftReason != "" {
		fmt.Fprintf(&state, "- You have been drifting out of character lately (%s); pull back toward your style\n",
			strings.ReplaceAll(in.State.LastDriftReason, "_", " "))
	}

	var extra strings.Builder
	for _, h := range in.Hints {
		fmt.Fprintf(&extra, "- %s\n", h)
	}
	for _, c := range in.AdvisoryConditions {
		fmt.Fprintf(&extra, "- Keep in mind: %s\n", strings.ReplaceAll(c, "_", " "))
	}
	for reward, decision := range in.Rewards {
		if decision.Status == rules.RewardForbidden {
			fmt.Fprintf(&extra, "- Do NOT offer or agree to %s yet; the player has not earned it.\n",
				rewardPhrase(reward))
		}
	}

	return fmt.Sprintf(personaSystemPrompt, character.String(), state.String(), extra.String())
}

func rewardPhrase(r rules.RewardType) string {
	switch r {
	case rules.RewardPhoneNumber:
		return "giving your phone number"
	case rules.RewardInstagram:
		return "sharing your instagram"
	case rules.RewardDateAgreement:
		return "agreeing to a date"
	default:
		return "closing out the conversation warmly"
	}
}
