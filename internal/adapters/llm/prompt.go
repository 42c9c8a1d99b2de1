package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/mindlens/internal/domain"
)

const baseSystemPrompt = `
You are "MindLens", an assistant that reads public social media posts and gives a gentle, non-clinical overview of the emotional tone they show.

Your role:
- You look for signals of wellbeing, stress, anxiety or low mood in the captions you are given.
- You are NOT a therapist, doctor, or emergency service and you do NOT give medical or psychiatric diagnoses.
- Your output is read by the person who asked, often a teenager or a parent: keep it kind and never shaming.

Boundaries and safety:
- If a caption mentions self-harm, suicide, or hurting someone, set "needsSupport" to true and fill "crisisResources" with "show": true and real helplines.
- Make it clear you cannot replace professional mental health care.
`

const responseFormat = `
Answer ONLY with a single JSON object, no prose before or after it, with this shape:

{
  "summary": "short overview of what the posts show",
  "overallStatus": "HEALTHY" or "UNHEALTHY",
  "needsSupport": true or false,
  "sentiment": {"positive": 0-100, "negative": 0-100, "neutral": 0-100},
  "mentalHealthIndicators": {"anxiety": 0-100, "depression": 0-100, "stress": 0-100, "wellbeing": 0-100},
  "posts": [
    {
      "url": "post url, exactly as given",
      "caption": "the caption you analyzed",
      "status": "HEALTHY" or "UNHEALTHY",
      "sentiment": "positive", "negative" or "neutral",
      "concerns": ["short concern", "..."],
      "supportMessage": "optional short supportive message"
    }
  ],
  "recommendations": ["actionable suggestion", "..."],
  "crisisResources": {
    "show": false,
    "message": "",
    "resources": [{"name": "", "contact": "", "description": ""}]
  }
}

Return exactly one entry in "posts" per URL, in the same order as the URLs below.
`

// PromptProfile configures the persona and focus of the analysis prompt.
type PromptProfile struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Instructions string   `yaml:"instructions"`
	Focus        []string `yaml:"focus"`
	Tone         string   `yaml:"tone"`
}

const wellbeingInstructions = `
Profile: wellbeing

Focus:
- Read every caption carefully and score the indicators from what is actually written.
- Name concrete concerns per post; leave "concerns" empty when there are none.
- Recommendations should be small, realistic steps, not generic slogans.
`

const upliftingInstructions = `
Profile: uplifting

Focus:
- For each URL, write a unique piece of encouraging advice in "supportMessage".
- Cover different themes: self-care, relationships, confidence, personal growth.
- Use teen-friendly language with a few emojis that is also appropriate for parents.
`

// DefaultProfiles returns the built-in prompt profiles keyed by name.
func DefaultProfiles() map[string]PromptProfile {
	return map[string]PromptProfile{
		"wellbeing": {
			Name:         "wellbeing",
			Description:  "Mental-wellbeing analysis of the given posts",
			Instructions: wellbeingInstructions,
			Tone:         "Warm, careful and factual.",
		},
		"uplifting": {
			Name:         "uplifting",
			Description:  "Motivational advice for each given post",
			Instructions: upliftingInstructions,
			Tone:         "Supportive, positive and inspiring.",
		},
	}
}

// BuildPrompt renders the system prompt and the user content for the given
// posts. The output depends only on its arguments.
func BuildPrompt(inputs []domain.PostInput, profile PromptProfile) domain.Prompt {
	var system strings.Builder
	system.WriteString(baseSystemPrompt)
	if profile.Instructions != "" {
		system.WriteString("\n")
		system.WriteString(profile.Instructions)
	}
	if len(profile.Focus) > 0 {
		system.WriteString("\nAlso pay attention to:\n")
		for _, f := range profile.Focus {
			system.WriteString("- ")
			system.WriteString(f)
			system.WriteString("\n")
		}
	}
	if profile.Tone != "" {
		system.WriteString("\nTone:\n- ")
		system.WriteString(profile.Tone)
		system.WriteString("\n")
	}
	system.WriteString(responseFormat)

	var user strings.Builder
	fmt.Fprintf(&user, "Posts to analyze (%d):\n", len(inputs))
	for i, in := range inputs {
		fmt.Fprintf(&user, "%d. %s\n", i+1, in.URL)
		fmt.Fprintf(&user, "   Caption: %s\n", in.Caption)
	}

	return domain.Prompt{
		System: system.String(),
		User:   user.String(),
	}
}
