package llm

import (
	"fmt"
	"unicode/utf8"
)

const promptTemplate = `You are an expert analyst of extremist content in Russian-language media and social networks.

Analyse the text below and decide:
1. Does it call for extremism, terrorism or the violent overthrow of the government?
2. Does it incite ethnic, religious or social hatred?
3. Does it contain threats of violence or justify terrorism?

Be strict. Ordinary political opinions, criticism of the authorities and news reporting are NOT extremism.

Return ONLY a JSON object of the form:
{
  "extremism_percentage": number from 0 to 100,
  "risk_level": "none" | "low" | "medium" | "high" | "critical",
  "detected_keywords": ["keyword 1", "keyword 2"],
  "explanation": "short justification",
  "is_extremist": true | false
}

Text to analyse: %q`

// BuildPrompt renders the analysis prompt for an already truncated text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// Truncate cuts text to at most limit characters. A non-positive limit disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
