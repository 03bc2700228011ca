package ai

import (
	"encoding/json"
	"strings"
)

// ParseSuggestion decodes the model's reply into a Suggestion. Models often
// wrap the JSON in markdown code fences despite the prompt, so fences are
// stripped first. When the reply still is not valid JSON the raw text becomes
// the suggestion with default category and priority.
func ParseSuggestion(text string) Suggestion {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var s Suggestion
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil || s.Suggestion == "" {
		return Suggestion{
			Suggestion: cleaned,
			Category:   "General",
			Priority:   "medium",
		}
	}
	if s.Category == "" {
		s.Category = "General"
	}
	if s.Priority == "" {
		s.Priority = "medium"
	}
	return s
}
