package dto

import "github.com/spec-kit/helpdesk-service/internal/ai"

// SuggestionRequest payload for the AI endpoint.
type SuggestionRequest struct {
	Description string `json:"description" validate:"required"`
}

// SuggestionResponse relays the structured suggestion. Message is set only on
// failure so the body stays a well-formed suggestion object either way.
type SuggestionResponse struct {
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
}

// NewSuggestionResponse maps a provider suggestion.
func NewSuggestionResponse(s ai.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		Suggestion: s.Suggestion,
		Category:   s.Category,
		Priority:   s.Priority,
	}
}
