package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/ai"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const suggestionPromptFormat = `Act as an IT Support AI. Analyze the following user issue: %q.

You must respond with a STRICT JSON object. Do not include any markdown formatting.

JSON Keys required:
1. "suggestion": A short, friendly, 3-step solution (max 50 words).
2. "category": Choose ONE from ['General', 'Technical', 'Billing', 'Feature Request'].
3. "priority": Choose ONE from ['low', 'medium', 'high'] based on urgency.

Example format:
{"suggestion": "- Step 1\n- Step 2", "category": "Technical", "priority": "high"}`

// SuggestionService relays problem descriptions to the generative-AI provider
// and returns structured suggestions. Replies are cached by description hash.
type SuggestionService struct {
	generator ai.Generator
	model     string
	cache     *cache.Cache
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewSuggestionService builds the service. The model is resolved once at
// startup (see ai.DetectModel) and never mutated afterwards.
func NewSuggestionService(generator ai.Generator, model string, suggestionCache *cache.Cache, metrics *observability.Metrics, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{
		generator: generator,
		model:     model,
		cache:     suggestionCache,
		metrics:   metrics,
		logger:    logger,
	}
}

// Suggest produces a structured suggestion for the description. On provider
// failure it returns the default suggestion payload together with an internal
// error so the handler can keep the response body well-formed.
func (s *SuggestionService) Suggest(ctx context.Context, description string) (ai.Suggestion, error) {
	description = strings.TrimSpace(description)
	if len(description) < 5 {
		return ai.Suggestion{}, apperrors.NewValidationError("Description too short.")
	}

	key := cacheKey(description)
	var cached ai.Suggestion
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("suggestion cache read failed", zap.Error(err))
	} else if hit {
		s.metrics.RecordSuggestionCache(true)
		return cached, nil
	}
	s.metrics.RecordSuggestionCache(false)

	prompt := fmt.Sprintf(suggestionPromptFormat, description)
	raw, err := s.generator.GenerateContent(ctx, s.model, prompt)
	if err != nil {
		s.logger.Error("generation request failed", zap.String("model", s.model), zap.Error(err))
		return ai.DefaultSuggestion(), apperrors.NewInternalError(err)
	}

	suggestion := ai.ParseSuggestion(raw)
	if err := s.cache.Set(ctx, key, suggestion); err != nil {
		s.logger.Warn("suggestion cache write failed", zap.Error(err))
	}
	return suggestion, nil
}

func cacheKey(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:])
}
