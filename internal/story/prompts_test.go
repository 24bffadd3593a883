package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCharacterPrompt(t *testing.T) {
	prompt := BuildCharacterPrompt(&Chapter{Persona: "You are Hana.", Title: "Quiz Night"})

	assert.Contains(t, prompt, "You are Hana.")
	assert.Contains(t, prompt, `"Quiz Night"`)
	assert.Contains(t, prompt, "Stay in character")
}

func TestBuildMysteryPromptIncludesCaseFileAndGuardrail(t *testing.T) {
	prompt := BuildMysteryPrompt(mysteryChapter())

	assert.Contains(t, prompt, "A theft during a private showing.")
	assert.Contains(t, prompt, "The Restorer")
	assert.Contains(t, prompt, "The culprit is restorer.")
	assert.Contains(t, prompt, "never name the culprit")
}
