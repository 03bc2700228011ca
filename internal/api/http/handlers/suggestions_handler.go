package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/ai"
	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SuggestionsHandler exposes the AI suggestion endpoint.
type SuggestionsHandler struct {
	service *service.SuggestionService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestionService *service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{service: suggestionService}
}

// Suggest POST /api/ai/suggest-solution. Even on provider failure the body is
// a well-formed suggestion object so clients can always render something.
func (h *SuggestionsHandler) Suggest(c *fiber.Ctx) error {
	var req dto.SuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	suggestion, err := h.service.Suggest(c.Context(), req.Description)
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.HTTPStatus < http.StatusInternalServerError {
			return err
		}
		resp := dto.NewSuggestionResponse(ai.DefaultSuggestion())
		resp.Message = "AI service is currently unavailable."
		return c.Status(http.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(dto.NewSuggestionResponse(suggestion))
}
