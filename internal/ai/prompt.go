package ai

import "fmt"

const promptTemplate = `Suggest 5 distinct %s %s songs in %s language.
Mood: %s.
IMPORTANT: Respond ONLY with five unique lines, each in this exact format:
Song - Artist
Do NOT include numbering, quotes, explanations, or any extra text - only the five lines.
If you cannot find songs exactly matching the language/era, return the closest matches in that format.
`

// BuildPrompt renders the instruction for d. Empty fields render as empty
// tokens.
func BuildPrompt(d Descriptor) string {
	return fmt.Sprintf(promptTemplate, d.Era, d.Mood, d.Language, d.Feeling)
}
