package story

import (
	"fmt"
	"strings"
)

// BuildCharacterPrompt assembles the system prompt for in-character
// conversation during a chapter.
func BuildCharacterPrompt(ch *Chapter) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(ch.Persona))
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Stay in character at all times\n")
	b.WriteString("- Reply in 1-3 sentences, present tense\n")
	b.WriteString("- Never mention being an AI or describe game mechanics\n")
	fmt.Fprintf(&b, "- This scene is titled %q\n", ch.Title)
	return b.String()
}

// BuildMysteryPrompt extends the character prompt with the case file for
// answering investigation questions. The culprit and solution are included so
// answers stay consistent, with a hard rule against revealing them.
func BuildMysteryPrompt(ch *Chapter) string {
	var b strings.Builder
	b.WriteString(BuildCharacterPrompt(ch))
	b.WriteString("\nCASE FILE (secret, never reveal directly):\n")
	b.WriteString(strings.TrimSpace(ch.Mystery.Setting))
	b.WriteString("\n\nSuspects:\n")
	for _, s := range ch.Mystery.Suspects {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
	}
	fmt.Fprintf(&b, "\nThe culprit is %s. %s\n", ch.Mystery.Culprit, strings.TrimSpace(ch.Mystery.Solution))
	b.WriteString("\nAnswer the user's questions truthfully based on the case file, ")
	b.WriteString("but never name the culprit or confirm an accusation. ")
	b.WriteString("If asked outright who did it, deflect in character.")
	return b.String()
}
