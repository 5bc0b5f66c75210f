package brief

import (
	"strings"
	"unicode/utf8"
)

// SystemPromptPolish is the system prompt for rewriting brief narrative.
const SystemPromptPolish = `You are an editor tightening the prose of an executive brief.

Rewrite the text you are given so it reads crisply and professionally.

Rules:
- Keep every number, name, identifier and date exactly as written
- Do not add facts, opinions or recommendations
- Keep it to a similar length; never more than two sentences longer
- Respond with the rewritten text only, no preamble or quotes`

// maxPolishInput caps the text sent for rewriting.
const maxPolishInput = 2000

// BuildPolishPrompt creates the user prompt for one narrative field.
func BuildPolishPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the following brief text:\n\n")
	sb.WriteString(truncate(text, maxPolishInput))
	return sb.String()
}

// truncate shortens s to maxLen bytes on a rune boundary, adding an
// ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
